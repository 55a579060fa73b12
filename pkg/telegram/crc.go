// SPDX-License-Identifier: Apache-2.0

package telegram

// Checksum computes the PLS CRC16 over data.
//
// The device uses a left-shifting CRC with generator polynomial 0x8005
// that folds in the current and previous data bytes as a little-endian
// pair on every step, with no final XOR. The scanner silently drops
// frames whose trailer does not match this value bit-exactly.
func Checksum(data []byte) uint16 {
	var crc uint16
	var prev byte
	for _, b := range data {
		if crc&0x8000 != 0 {
			crc = (crc & 0x7FFF) << 1
			crc ^= crcGenPoly
		} else {
			crc <<= 1
		}
		crc ^= uint16(b) | uint16(prev)<<8
		prev = b
	}
	return crc
}
