package control

import (
	"math"

	"github.com/rspg/heatjar/x/mathx"
)

// PhaseDelay returns φ(rate): the time, in microseconds, from the start of
// an AC half-cycle of period halfPeriodUS until the gate should fire, for a
// commanded power rate in [0,1] (spec.md §4.2).
//
//	φ = T * arccos(2*rate - 1) / π
//
// rate<=0 returns halfPeriodUS (gate never opens this half-cycle); rate>=1
// returns 0 (gate fires immediately at the zero-cross, the "bypass" case
// spec.md §4.1 calls out separately). Monotone non-increasing in rate: more
// commanded power means less delay.
func PhaseDelay(rate float64, halfPeriodUS uint32) uint32 {
	rate = mathx.Clamp(rate, 0.0, 1.0)
	if rate <= 0 {
		return halfPeriodUS
	}
	if rate >= 1 {
		return 0
	}
	frac := math.Acos(2*rate-1) / math.Pi
	return uint32(float64(halfPeriodUS) * frac)
}

// OnDuration returns Δon(rate), the duration the gate stays HIGH once
// fired before the gate timer drives it LOW again (spec.md §4.2,
// §8: "Δon(r) = T*arccos(1-2r)/π"). It is the trailing-edge complement of
// PhaseDelay, so Δon(0)=0 and Δon(1)=halfPeriodUS: monotone non-decreasing
// in rate, the opposite trend from PhaseDelay, and fire-time plus
// on-duration always sums to exactly halfPeriodUS.
func OnDuration(rate float64, halfPeriodUS uint32) uint32 {
	return halfPeriodUS - PhaseDelay(rate, halfPeriodUS)
}

// PhaseTableSize is the resolution of the precomputed lookup alternative to
// the closed-form arccos formula (spec.md §4.2: "Implementations may use
// this exact formula or a table").
const PhaseTableSize = 257

// PhaseTable holds φ(rate)/halfPeriodUS as a fixed-point fraction in
// [0,1<<16], indexed by rate*256 rounded to the nearest integer in
// [0,256]. NewPhaseTable computes and returns a filled table; the package
// keeps no shared default instance.
type PhaseTable [PhaseTableSize]uint32

// NewPhaseTable returns a freshly computed lookup table.
func NewPhaseTable() *PhaseTable {
	var t PhaseTable
	t.build()
	return &t
}

func (t *PhaseTable) build() {
	for i := 0; i < PhaseTableSize; i++ {
		rate := float64(i) / float64(PhaseTableSize-1)
		frac := math.Acos(2*rate-1) / math.Pi
		t[i] = uint32(frac * 65536)
	}
	t[PhaseTableSize-1] = 0
}

// PhaseDelay looks up φ(rate) using the table instead of computing arccos,
// for deployments that prefer a fixed cost per half-cycle over a transcendental
// call (spec.md §4.2 design note).
func (t *PhaseTable) PhaseDelay(rate float64, halfPeriodUS uint32) uint32 {
	rate = mathx.Clamp(rate, 0.0, 1.0)
	if rate <= 0 {
		return halfPeriodUS
	}
	if rate >= 1 {
		return 0
	}
	idx := int(rate*float64(PhaseTableSize-1) + 0.5)
	frac := t[idx]
	return uint32((uint64(halfPeriodUS) * uint64(frac)) >> 16)
}
