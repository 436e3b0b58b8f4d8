package types

// HeatControlMode is the zero-cross/gate-timer state machine mode shared
// between the zero-cross ISR and the gate timer ISR (spec.md §3, §4.2).
type HeatControlMode uint8

const (
	HeatIdle HeatControlMode = iota
	HeatUp
	HeatDown
)

// Tuning is the PI/PID coefficient triple persisted at NV-store addresses
// 0 (Kp), 4 (Ti), 8 (Td) per spec.md §3 and §6.
type Tuning struct {
	Kp float64 `koanf:"kp"`
	Ti float64 `koanf:"ti"`
	Td float64 `koanf:"td"`
}

// NV store addresses for the tuning triple (spec.md §6).
const (
	NVAddrKp uint32 = 0
	NVAddrTi uint32 = 4
	NVAddrTd uint32 = 8
)

// Default tuning values written back at boot when the NV store holds an
// implausible value (spec.md §6).
var DefaultTuning = Tuning{Kp: 0.3, Ti: 0.01, Td: 0}

// ControlState is the main-context-owned half of the control kernel's
// shared state (spec.md §3 "Ownership"): the main loop writes
// TargetTemperature and Tuning.Kp/Ti; the sampler writes
// CurrentTemperature and TemperatureErrorIntegral. It excludes the
// ISR-owned fields (zeroCrossInterval, heatControlMode, heatControlTime,
// status.power), which live in the control package's atomic mailbox
// types instead, per the concurrency model in spec.md §5.
type ControlState struct {
	TargetTemperature        float64
	CurrentTemperature       float64
	TemperatureErrorIntegral float64
	Tuning                   Tuning
	PhaseDelayUS             uint16 // last SET_PHASE_DELAY value; not read by the zero-cross driver, which always uses the computed φ(rate)
}

// ResetSetpoints zeroes the setpoints and integral so the heater is not
// driven while a fault is latched (spec.md §5: "A fatal code < 0 is
// sticky and zeroes control setpoints on entry to the main loop").
func (c *ControlState) ResetSetpoints() {
	c.TargetTemperature = 0
	c.CurrentTemperature = 0
	c.TemperatureErrorIntegral = 0
}
