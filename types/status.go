package types

import "github.com/rspg/heatjar/errcode"

// StatusSize is the wire size of a Status record (spec.md §3).
const StatusSize = 8

// RemainMinutesFlag marks remainTime as minutes rather than seconds.
const RemainMinutesFlag uint16 = 0x8000

// Status is the 8-byte wire-visible status record published by the
// protocol engine and mirrored on the OLED.
type Status struct {
	Code        errcode.Code // signed; negative = latched fault
	CmdID       uint8        // index of the currently-executing program slot (0..31)
	CmdNum      uint8        // next free slot index during program upload (0..31)
	Power       uint8        // last commanded power rate, 0..100
	Temperature Temp         // Q8.8 signed fixed-point, °C × 256
	RemainTime  uint16       // seconds if <=3600, else minutes|RemainMinutesFlag
}

// EncodeRemainTime converts a duration in whole seconds to the wire
// encoding spec.md §3 and §8 scenario 4 describe: seconds up to and
// including one hour remaining, minutes with the high bit set once more
// than an hour remains. (Scenario 4 encodes an exact 3600s remainder as
// plain seconds, not as "60|flag" — the boundary is inclusive on the
// seconds side.)
func EncodeRemainTime(seconds int) uint16 {
	if seconds < 0 {
		seconds = 0
	}
	if seconds <= 3600 {
		return uint16(seconds)
	}
	minutes := seconds / 60
	if minutes > 0x7FFF {
		minutes = 0x7FFF
	}
	return uint16(minutes) | RemainMinutesFlag
}

// Bytes encodes the status record into its 8-byte wire form, in declaration
// order: code, cmdid, cmdnum, power, temperature (big-endian), remainTime
// (big-endian).
func (s Status) Bytes() [StatusSize]byte {
	var b [StatusSize]byte
	b[0] = byte(s.Code)
	b[1] = s.CmdID
	b[2] = s.CmdNum
	b[3] = s.Power
	b[4] = byte(uint16(s.Temperature) >> 8)
	b[5] = byte(uint16(s.Temperature))
	b[6] = byte(s.RemainTime >> 8)
	b[7] = byte(s.RemainTime)
	return b
}

// DecodeStatus reverses Bytes. It always succeeds for an 8-byte input; the
// caller is responsible for validating length beforehand.
func DecodeStatus(b [StatusSize]byte) Status {
	return Status{
		Code:        errcode.Code(int8(b[0])),
		CmdID:       b[1],
		CmdNum:      b[2],
		Power:       b[3],
		Temperature: Temp(int16(uint16(b[4])<<8 | uint16(b[5]))),
		RemainTime:  uint16(b[6])<<8 | uint16(b[7]),
	}
}
