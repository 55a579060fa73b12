// SPDX-License-Identifier: Apache-2.0

package pls

import "testing"

func TestBaudCodeRoundTrip(t *testing.T) {
	for _, b := range []Baud{Baud9600, Baud19200, Baud38400, Baud500K} {
		got, ok := BaudFromCode(b.Code())
		if !ok || got != b {
			t.Errorf("BaudFromCode(%v.Code()) = %v, %v, want %v, true", b, got, ok, b)
		}
	}
	if _, ok := BaudFromCode(0x00); ok {
		t.Error("BaudFromCode(0x00) accepted an unknown code")
	}
}

func TestParseBaud(t *testing.T) {
	tests := []struct {
		in      string
		want    Baud
		wantErr bool
	}{
		{in: "9600", want: Baud9600},
		{in: "19200", want: Baud19200},
		{in: "38400", want: Baud38400},
		{in: "500000", want: Baud500K},
		{in: "500K", want: Baud500K},
		{in: "500k", want: Baud500K},
		{in: "115200", wantErr: true},
		{in: "fast", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBaud(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBaud(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBaud(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProbeOrder(t *testing.T) {
	order := ProbeOrder(Baud38400)
	if order[0] != Baud38400 {
		t.Errorf("probe order starts with %v, want the desired rate first", order[0])
	}
	if len(order) != 4 {
		t.Fatalf("probe order has %d entries, want 4 (bounded candidate set)", len(order))
	}
	seen := map[Baud]bool{}
	for _, b := range order {
		if seen[b] {
			t.Errorf("rate %v probed twice", b)
		}
		seen[b] = true
	}
}

func TestBaudString(t *testing.T) {
	tests := []struct {
		b    Baud
		want string
	}{
		{b: Baud9600, want: "9600"},
		{b: Baud500K, want: "500K"},
		{b: Baud(1234), want: "unknown(1234)"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.b), got, tt.want)
		}
	}
}
