package control

import "github.com/rspg/heatjar/types"

// HeatMode aliases the shared control-state enum so this package's ISR-facing
// code reads naturally (spec.md §3, §4.2).
type HeatMode = types.HeatControlMode

const (
	HeatIdle = types.HeatIdle
	HeatUp   = types.HeatUp
	HeatDown = types.HeatDown
)
