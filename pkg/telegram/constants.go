// SPDX-License-Identifier: Apache-2.0

// Package telegram implements the SICK PLS telegram codec.
//
// A telegram is the unit of exchange with the scanner: a fixed header
// (start byte, address, little-endian payload length), a payload whose
// first byte is the command or reply code, and a CRC16 trailer. The
// package provides frame construction, parsing with resynchronization,
// and the device's CRC16 checksum.
package telegram

// Protocol framing
const (
	StartByte = 0x02

	HeaderLength  = 4 // STX + address + 2-byte payload length
	TrailerLength = 2 // CRC16, little-endian
	MaxPayloadLen = 812

	MaxTelegramLen = HeaderLength + MaxPayloadLen + TrailerLength
)

// CRC16 generator polynomial used by the PLS
const crcGenPoly = 0x8005

// Default serial addresses
const (
	DefaultHostAddress   = 0x80
	DefaultDeviceAddress = 0x00
)

// Command codes (host → device)
const (
	CmdReset           = 0x10
	CmdSwitchOpMode    = 0x20
	CmdRequestValues   = 0x30
	CmdStatusRequest   = 0x31
	CmdErrorRequest    = 0x32
	CmdBaudStatusQuery = 0x74
)

// Reply codes (device → host)
const (
	ReplyPowerOn    = 0x91
	ReplyModeAck    = 0xA0
	ReplyValues     = 0xB0
	ReplyStatus     = 0xB1
	ReplyErrors     = 0xB2
	ReplyBaudStatus = 0xF4
)

// Mode-switch ack status bytes (first payload byte after the 0xA0 code)
const (
	ModeAckOK       = 0x00
	ModeAckDenied   = 0x01
	ModeAckNoReason = 0x02
)

// Operating mode bytes carried by CmdSwitchOpMode
const (
	OpModeInstallation   = 0x00
	OpModeDiagnostic     = 0x10
	OpModeMonitorStream  = 0x24
	OpModeMonitorRequest = 0x25
)

// Baud switch codes (sent as the mode byte of CmdSwitchOpMode)
const (
	BaudCode9600  = 0x42
	BaudCode19200 = 0x41
	BaudCode38400 = 0x40
	BaudCode500K  = 0x48
)

// Replies carry the host address ORed into the device address.
const ReplyAddressFlag = 0x80
