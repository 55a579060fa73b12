// SPDX-License-Identifier: Apache-2.0

// Package pls drives a SICK PLS laser range-finder over an unreliable
// byte stream. It layers a background stream monitor and a typed
// request/reply engine on top of the telegram codec.
//
// Exactly two concurrent activities share a Device: the stream
// monitor's ingestion goroutine and a single caller issuing requests.
// The engine serializes overlapping requests internally, but it cannot
// correlate replies to callers — the protocol has no request identity —
// so concurrent callers whose command codes collide may observe each
// other's replies. Use one caller per Device.
package pls

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// Defaults mirroring the scanner's documented behavior.
const (
	// DefaultPassword unlocks installation mode.
	DefaultPassword = "SICK_PLS"

	// DefaultMessageTimeout bounds one try of a status or config
	// command.
	DefaultMessageTimeout = 2 * time.Second

	// DefaultModeSwitchTimeout bounds one try of a mode or baud
	// switch; the device can take several seconds to act on these.
	DefaultModeSwitchTimeout = 20 * time.Second

	// DefaultProbeTimeout bounds a single baud-detection probe.
	DefaultProbeTimeout = time.Second

	// DefaultTries is the retry budget applied to every command.
	DefaultTries = 3

	// passwordLength is the fixed password field width in
	// installation-mode telegrams.
	passwordLength = 8
)

// Config carries the tunables of a Device. The zero value of any field
// falls back to the package default.
type Config struct {
	DeviceAddress     byte // zero is the scanner's factory address
	Password          string
	MessageTimeout    time.Duration
	ModeSwitchTimeout time.Duration
	ProbeTimeout      time.Duration
	Tries             int
	Logger            zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Password == "" {
		c.Password = DefaultPassword
	}
	if c.MessageTimeout == 0 {
		c.MessageTimeout = DefaultMessageTimeout
	}
	if c.ModeSwitchTimeout == 0 {
		c.ModeSwitchTimeout = DefaultModeSwitchTimeout
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Tries == 0 {
		c.Tries = DefaultTries
	}
	return c
}

// Device is the scanner-facing driver.
type Device struct {
	transport Transport
	monitor   *Monitor
	log       zerolog.Logger
	cfg       Config

	// reqMu enforces the single-outstanding-request constraint; see
	// the package comment.
	reqMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	fixedRate   bool // transport has no adjustable line rate
	sessionBaud Baud
	mode        OperatingMode
	opStatus    DeviceOperatingStatus
	haveStatus  bool
}

// NewDevice creates a driver over an already opened transport. Call
// Initialize before issuing commands and Uninitialize when done; the
// device owns the transport from here on and closes it on teardown.
func NewDevice(t Transport, cfg Config) *Device {
	cfg = cfg.withDefaults()
	return &Device{
		transport: t,
		monitor:   NewMonitor(t, cfg.Logger),
		log:       cfg.Logger,
		cfg:       cfg,
		mode:      ModeUnknown,
	}
}

// Monitor exposes the device's stream monitor for passive consumers
// such as stream-mode scan readers and link diagnostics.
func (d *Device) Monitor() *Monitor {
	return d.monitor
}

// Initialize brings the link up: it starts the stream monitor, probes
// the device's actual baud rate over the bounded candidate set, moves
// the session to desired if different, and takes a first operating
// status snapshot. A desired rate of zero means probe only: the
// session stays at whatever rate the device is found at.
//
// Failure leaves the device state indeterminate and is surfaced as a
// ConfigError; callers should treat it as "device not usable" and
// still call Uninitialize to release the transport.
func (d *Device) Initialize(desired Baud) error {
	if desired != 0 && !desired.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unsupported baud rate %d", int(desired))}
	}
	d.mu.Lock()
	if d.initialized {
		d.mu.Unlock()
		return &ConfigError{Reason: "already initialized"}
	}
	d.mu.Unlock()

	d.monitor.Start()

	probe := desired
	if probe == 0 {
		probe = DefaultBaud
	}
	current, err := d.probeBaud(probe)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.sessionBaud = current
	fixed := d.fixedRate
	d.mu.Unlock()

	if !fixed && desired != 0 && current != desired {
		if err := d.setSessionBaud(desired); err != nil {
			return err
		}
	}

	if _, err := d.GetOperatingStatus(); err != nil {
		return &ConfigError{Reason: "initial status refresh failed", Err: err}
	}

	d.mu.Lock()
	d.initialized = true
	baud := d.sessionBaud
	d.mu.Unlock()

	d.log.Info().Stringer("baud", baud).Msg("device initialized")
	return nil
}

// Uninitialize restores the device to its power-on defaults as far as
// possible — monitor-request mode, 9600 baud — then stops the monitor
// and closes the transport. Restore failures are advisory: they are
// reported in the returned error, but teardown always completes and
// the transport is always closed. If the session never came up, the
// restore steps are skipped rather than retried against a device that
// was never reachable.
func (d *Device) Uninitialize() error {
	var errs []error

	d.mu.Lock()
	wasInitialized := d.initialized
	fixed := d.fixedRate
	baud := d.sessionBaud
	d.mu.Unlock()

	if wasInitialized {
		if err := d.SetMonitorRequestMode(); err != nil {
			d.log.Warn().Err(err).Msg("teardown: restoring monitor-request mode failed")
			errs = append(errs, fmt.Errorf("restore operating mode: %w", err))
		}
		if !fixed && baud != DefaultBaud {
			if err := d.setSessionBaud(DefaultBaud); err != nil {
				d.log.Warn().Err(err).Msg("teardown: restoring default baud failed")
				errs = append(errs, fmt.Errorf("restore baud: %w", err))
			}
		}
	}

	d.monitor.Stop()
	if err := d.transport.Close(); err != nil {
		errs = append(errs, &TransportError{Op: "close", Err: err})
	}

	d.mu.Lock()
	d.initialized = false
	d.mode = ModeUnknown
	d.mu.Unlock()

	return errors.Join(errs...)
}

// probeBaud finds the rate the device currently speaks by issuing a
// harmless status request at each candidate rate. On a fixed-rate
// transport the current rate is probed once and reported as desired.
func (d *Device) probeBaud(desired Baud) (Baud, error) {
	for _, b := range ProbeOrder(desired) {
		if err := d.setTransportBaud(b); err != nil {
			if errors.Is(err, ErrBaudFixed) {
				d.mu.Lock()
				d.fixedRate = true
				d.mu.Unlock()
				if perr := d.ping(); perr != nil {
					return 0, &ConfigError{Reason: "device not reachable over fixed-rate transport", Err: perr}
				}
				d.log.Debug().Msg("fixed-rate transport, skipping baud detection")
				return desired, nil
			}
			return 0, err
		}

		if err := d.ping(); err == nil {
			d.log.Debug().Stringer("baud", b).Msg("device detected")
			return b, nil
		}
		d.log.Debug().Stringer("baud", b).Msg("no answer")
	}
	return 0, &ConfigError{Reason: "device not reachable at any supported baud rate"}
}

// ping issues a single status request with one try. Used as the
// harmless probe during baud detection and switch verification.
func (d *Device) ping() error {
	_, err := d.sendAndAwaitReply([]byte{telegram.CmdStatusRequest}, telegram.ReplyStatus, d.cfg.ProbeTimeout, 1)
	return err
}

// setTransportBaud changes the local line rate and drops bytes sampled
// at the old rate.
func (d *Device) setTransportBaud(b Baud) error {
	if err := d.transport.SetBaud(int(b)); err != nil {
		if errors.Is(err, ErrBaudFixed) {
			return err
		}
		return &TransportError{Op: "set line rate", Err: err}
	}
	if dr, ok := d.transport.(interface{ Drain() error }); ok {
		if err := dr.Drain(); err != nil {
			return &TransportError{Op: "drain", Err: err}
		}
	}
	d.monitor.FlushPending()
	return nil
}

// setSessionBaud moves both ends to rate b: baud-change command,
// local line-rate switch, then verification by status request. A
// failure after the device may have switched leaves its state
// indeterminate, so it is reported as a ConfigError rather than
// retried across rates.
func (d *Device) setSessionBaud(b Baud) error {
	d.mu.Lock()
	if d.sessionBaud == b {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	if err := d.switchOpMode(b.Code(), nil); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("baud change to %s not acknowledged", b), Err: err}
	}
	if err := d.setTransportBaud(b); err != nil {
		return err
	}
	if err := d.ping(); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("device silent after switch to %s", b), Err: err}
	}

	d.mu.Lock()
	d.sessionBaud = b
	d.mu.Unlock()
	d.log.Info().Stringer("baud", b).Msg("session baud switched")
	return nil
}

// switchOpMode issues a switch-operating-mode command carrying the
// given mode byte and optional parameters, and checks the
// acknowledgement. A negative acknowledgement means the device refused
// the transition (for example a wrong installation password) and is
// surfaced as DeviceRejectedError.
func (d *Device) switchOpMode(mode byte, params []byte) error {
	payload := make([]byte, 0, 2+len(params))
	payload = append(payload, telegram.CmdSwitchOpMode, mode)
	payload = append(payload, params...)

	reply, err := d.sendAndAwaitReply(payload, telegram.ReplyModeAck, d.cfg.ModeSwitchTimeout, d.cfg.Tries)
	if err != nil {
		return err
	}
	if len(reply.Payload()) < 2 {
		return &ConfigError{Reason: "mode switch acknowledgement carries no status byte"}
	}
	if status := reply.Payload()[1]; status != telegram.ModeAckOK {
		return &DeviceRejectedError{
			Code:   reply.CommandCode(),
			Status: status,
			Reason: fmt.Sprintf("mode transition to 0x%02X refused", mode),
		}
	}
	return nil
}

func (d *Device) setMode(mode OperatingMode, params []byte) error {
	if err := d.switchOpMode(byte(mode), params); err != nil {
		d.mu.Lock()
		d.mode = ModeUnknown
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
	d.log.Debug().Stringer("mode", mode).Msg("operating mode confirmed")
	return nil
}

// SetInstallationMode switches the device into installation mode using
// the configured password.
func (d *Device) SetInstallationMode() error {
	password := make([]byte, passwordLength)
	copy(password, d.cfg.Password)
	return d.setMode(ModeInstallation, password)
}

// SetDiagnosticMode switches the device into diagnostic mode.
func (d *Device) SetDiagnosticMode() error {
	return d.setMode(ModeDiagnostic, nil)
}

// SetMonitorRequestMode switches the device to polled measurement
// delivery; scans are then fetched one at a time with GetScan.
func (d *Device) SetMonitorRequestMode() error {
	return d.setMode(ModeMonitorRequest, nil)
}

// SetMonitorStreamMode switches the device to continuous measurement
// streaming; scans are then read passively with LatestScan.
func (d *Device) SetMonitorStreamMode() error {
	return d.setMode(ModeMonitorStream, nil)
}

// OperatingMode returns the last mode successfully confirmed by the
// device. It is tracked locally, not polled.
func (d *Device) OperatingMode() OperatingMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// GetScan polls the device for one scan profile. The device is moved
// to monitor-request mode first if its confirmed mode is anything
// else.
func (d *Device) GetScan() (*ScanProfile, error) {
	if d.OperatingMode() != ModeMonitorRequest {
		if err := d.SetMonitorRequestMode(); err != nil {
			return nil, err
		}
	}

	reply, err := d.sendAndAwaitReply(
		[]byte{telegram.CmdRequestValues, 0x01},
		telegram.ReplyValues, d.cfg.MessageTimeout, d.cfg.Tries)
	if err != nil {
		return nil, err
	}
	return ParseScanProfile(reply.Payload())
}

// LatestScan returns the most recent scan streamed by the device, or
// waits up to timeout for the next one if none has arrived yet. The
// device must be in monitor stream mode.
//
// Frames other than scan replies may share the stream; they are
// skipped without consuming the timeout budget's start.
func (d *Device) LatestScan(timeout time.Duration) (*ScanProfile, error) {
	if d.OperatingMode() != ModeMonitorStream {
		return nil, ErrNotStreaming
	}

	frame, gen := d.monitor.Latest()
	deadline := time.Now().Add(timeout)
	for {
		if frame != nil && frame.CommandCode() == telegram.ReplyValues {
			return ParseScanProfile(frame.Payload())
		}
		var ok bool
		frame, gen, ok = d.monitor.Wait(gen, deadline)
		if !ok {
			return nil, &TimeoutError{Code: telegram.ReplyValues, Tries: 1}
		}
	}
}

// GetOperatingStatus requests a fresh operating status snapshot. The
// snapshot is cached for the derived accessors.
func (d *Device) GetOperatingStatus() (DeviceOperatingStatus, error) {
	reply, err := d.sendAndAwaitReply(
		[]byte{telegram.CmdStatusRequest},
		telegram.ReplyStatus, d.cfg.MessageTimeout, d.cfg.Tries)
	if err != nil {
		return DeviceOperatingStatus{}, err
	}
	status, err := ParseOperatingStatus(reply.Payload())
	if err != nil {
		return DeviceOperatingStatus{}, err
	}

	d.mu.Lock()
	d.opStatus = status
	d.haveStatus = true
	d.mu.Unlock()
	return status, nil
}

// GetBaudStatus queries the device's reported baud configuration.
func (d *Device) GetBaudStatus() (BaudStatus, error) {
	reply, err := d.sendAndAwaitReply(
		[]byte{telegram.CmdBaudStatusQuery},
		telegram.ReplyBaudStatus, d.cfg.MessageTimeout, d.cfg.Tries)
	if err != nil {
		return BaudStatus{}, err
	}
	return ParseBaudStatus(reply.Payload())
}

// GetStatus refreshes the operating status and reports the device's
// coarse health.
func (d *Device) GetStatus() (Status, error) {
	status, err := d.GetOperatingStatus()
	if err != nil {
		return StatusUnknown, err
	}
	return status.Status, nil
}

// GetErrors queries the device's error list.
func (d *Device) GetErrors() ([]DeviceError, error) {
	reply, err := d.sendAndAwaitReply(
		[]byte{telegram.CmdErrorRequest},
		telegram.ReplyErrors, d.cfg.MessageTimeout, d.cfg.Tries)
	if err != nil {
		return nil, err
	}
	return ParseErrorList(reply.Payload())
}

// ResetDevice commands a device reset and waits for the power-on
// telegram. The device reverts to its power-on defaults, so the
// confirmed mode becomes unknown and the session likely needs a fresh
// Initialize.
func (d *Device) ResetDevice() error {
	_, err := d.sendAndAwaitReply(
		[]byte{telegram.CmdReset},
		telegram.ReplyPowerOn, d.cfg.ModeSwitchTimeout, d.cfg.Tries)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.mode = ModeUnknown
	d.haveStatus = false
	d.mu.Unlock()
	d.log.Info().Msg("device reset acknowledged")
	return nil
}

// SessionBaud returns the currently negotiated line rate.
func (d *Device) SessionBaud() Baud {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessionBaud
}

// ScanAngle returns the scan angle in degrees from the cached
// operating status.
func (d *Device) ScanAngle() (float64, error) {
	s, err := d.cachedStatus()
	if err != nil {
		return 0, err
	}
	return float64(s.ScanAngle), nil
}

// ScanResolution returns the angular resolution in degrees from the
// cached operating status.
func (d *Device) ScanResolution() (float64, error) {
	s, err := d.cachedStatus()
	if err != nil {
		return 0, err
	}
	return float64(s.ScanResolution) / 100.0, nil
}

// MeasuringUnits returns the device's measuring units from the cached
// operating status.
func (d *Device) MeasuringUnits() (MeasuringUnits, error) {
	s, err := d.cachedStatus()
	if err != nil {
		return UnitsUnknown, err
	}
	return s.Units, nil
}

func (d *Device) cachedStatus() (DeviceOperatingStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.haveStatus {
		return DeviceOperatingStatus{}, &ConfigError{Reason: "no operating status snapshot yet; call GetOperatingStatus"}
	}
	return d.opStatus, nil
}
