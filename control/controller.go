package control

import "github.com/rspg/heatjar/x/mathx"

// ColdStartCeilC is the temperature below which the controller caps the
// commanded rate, to avoid inrush and thermistor self-heating artifacts
// while the vessel is far from target (spec.md §4.3).
const ColdStartCeilC = 40.0

// ColdStartCap is the rate ceiling applied below ColdStartCeilC.
const ColdStartCap = 0.5

// Rate computes the clamped power rate in [0,1] from the controller's
// pure function of (target, current, errorIntegral, Kp) — spec.md §4.3:
//
//	e    = target - current
//	rate = clamp(Kp * (e + errorIntegral), 0, 1)
//	if current < 40°C: rate = min(rate, 0.5)
//
// The error integral itself is advanced by the sampler, not here.
func Rate(target, current, errorIntegral, kp float64) float64 {
	e := target - current
	rate := mathx.Clamp(kp*(e+errorIntegral), 0.0, 1.0)
	if current < ColdStartCeilC {
		rate = mathx.Min(rate, ColdStartCap)
	}
	return rate
}
