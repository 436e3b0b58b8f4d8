// Package errcode defines the status-record error codes from the heat jar
// wire protocol and a monotone latch that enforces spec.md §3's invariant:
// once status.code goes negative, it stays negative until an explicit reset.
package errcode

import "github.com/rspg/heatjar/x/conv"

// Code is the signed status byte published on the wire (spec.md §3).
// Negative values are errors; zero and positive values are operating states.
type Code int8

const (
	Standby Code = 0
	Cooking Code = 1
)

// Error codes, in the exact range spec.md assigns them (−64..−58).
const (
	Unknown                   Code = -64
	InvalidCommand            Code = -63
	InvalidArgument           Code = -62
	CommandOverflow           Code = -61
	TemperatureOverlimit      Code = -60
	TemperatureFeedbackFailed Code = -59
	BTDeviceError             Code = -58
)

var names = map[Code]string{
	Standby:                   "standby",
	Cooking:                   "cooking",
	Unknown:                   "unknown",
	InvalidCommand:            "invalid_command",
	InvalidArgument:           "invalid_argument",
	CommandOverflow:           "command_overflow",
	TemperatureOverlimit:      "temperature_overlimit",
	TemperatureFeedbackFailed: "temperature_feedback_failed",
	BTDeviceError:             "btdevice_error",
}

func (c Code) Error() string {
	if s, ok := names[c]; ok {
		return s
	}
	var buf [4]byte
	return "code(" + string(conv.Itoa(buf[:], int64(c))) + ")"
}

// IsError reports whether c represents a latched fault (code < 0).
func (c Code) IsError() bool { return c < 0 }

// Latch is a saturating write for status.code: it only accepts a new value
// when the current value is non-negative (spec.md §9's "monotone lattice").
// Writes to a Latch are serialized by the single foreground pass and the
// ISR paths per spec.md §5; it is not safe for unsynchronized concurrent
// writers.
type Latch struct {
	code Code
}

// Set stores next unless the latch already holds a fault. Returns the
// resulting code.
func (l *Latch) Set(next Code) Code {
	if l.code.IsError() {
		return l.code
	}
	l.code = next
	return l.code
}

// Get returns the current latched code.
func (l *Latch) Get() Code { return l.code }

// Reset clears the latch back to Standby. Only an explicit, deliberate
// reset (e.g. operator action, reboot) may call this — spec.md §3 forbids
// any other path from un-latching a fault.
func (l *Latch) Reset() { l.code = Standby }
