// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"fmt"
	"strconv"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// Baud is a serial line rate supported by the PLS, in bits per second.
type Baud int

// Line rates the device can be switched to.
const (
	Baud9600  Baud = 9600
	Baud19200 Baud = 19200
	Baud38400 Baud = 38400
	Baud500K  Baud = 500000
)

// DefaultBaud is the rate the device falls back to on power-up unless
// a permanent rate has been written.
const DefaultBaud = Baud9600

// baudCodes maps line rates to the code bytes carried by baud-switch
// telegrams.
var baudCodes = map[Baud]byte{
	Baud9600:  telegram.BaudCode9600,
	Baud19200: telegram.BaudCode19200,
	Baud38400: telegram.BaudCode38400,
	Baud500K:  telegram.BaudCode500K,
}

// ProbeOrder returns the candidate rates tried during baud
// auto-detection, with desired first. The set is bounded: detection
// never cycles rates indefinitely.
func ProbeOrder(desired Baud) []Baud {
	order := []Baud{desired}
	for _, b := range []Baud{Baud9600, Baud19200, Baud38400, Baud500K} {
		if b != desired {
			order = append(order, b)
		}
	}
	return order
}

// Valid reports whether b is a rate the device supports.
func (b Baud) Valid() bool {
	_, ok := baudCodes[b]
	return ok
}

// Code returns the telegram code byte for b. Callers must check Valid
// first; an unknown rate panics.
func (b Baud) Code() byte {
	code, ok := baudCodes[b]
	if !ok {
		panic(fmt.Sprintf("pls: no telegram code for baud %d", int(b)))
	}
	return code
}

// String formats the rate in the device manual's style.
func (b Baud) String() string {
	switch b {
	case Baud9600, Baud19200, Baud38400:
		return strconv.Itoa(int(b))
	case Baud500K:
		return "500K"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// BaudFromCode maps a telegram baud code byte back to a line rate.
func BaudFromCode(code byte) (Baud, bool) {
	for b, c := range baudCodes {
		if c == code {
			return b, true
		}
	}
	return 0, false
}

// ParseBaud converts a user-supplied string to a line rate. Accepts
// the plain numbers plus "500K".
func ParseBaud(s string) (Baud, error) {
	if s == "500K" || s == "500k" {
		return Baud500K, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid baud rate %q", s)
	}
	b := Baud(n)
	if !b.Valid() {
		return 0, fmt.Errorf("unsupported baud rate %d (valid: 9600, 19200, 38400, 500000)", n)
	}
	return b, nil
}
