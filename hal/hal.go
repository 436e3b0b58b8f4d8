// Package hal defines the hardware abstraction boundary between the
// control kernel and the concrete pinout/transport of spec.md §6, plus
// the out-of-scope collaborators spec.md §1 says to specify only as Go
// interfaces: the OLED renderer, the buzzer melody player, and the
// power-switch debounce input.
package hal

import "time"

// ZeroCrossPin is the opto-isolated zero-cross input (spec.md §6 pin B):
// rising-edge triggered, maximum rate 100-120 Hz (spec.md §5).
type ZeroCrossPin interface {
	// WaitEdge blocks until the next rising edge and returns its
	// timestamp, or returns a zero time and a non-nil error if the
	// context/lifetime ended first.
	WaitEdge() (time.Time, error)
	Close() error
}

// GatePin is the active-high triac gate output (spec.md §6 pin C).
type GatePin interface {
	SetHigh()
	SetLow()
}

// ADCReader samples the thermistor divider (spec.md §6 pin E), returning
// a 10-bit reading (spec.md §4.4).
type ADCReader interface {
	Read() (uint16, error)
}

// PowerSwitch is the active-low power-hold input spec.md §6 describes
// (pin A) and spec.md §1 calls out as an out-of-scope debounced
// collaborator; the control kernel only needs to observe its state.
type PowerSwitch interface {
	Pressed() bool
}

// HeartbeatLED is the liveness indicator output (spec.md §6).
type HeartbeatLED interface {
	Toggle()
}

// Display is the OLED rendering helper (spec.md §1's out-of-scope list),
// specified here only as the surface the control kernel writes status to.
type Display interface {
	ShowStatus(code int8, temperature float64)
}
