package control

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/rspg/heatjar/x/mathx"
)

// DebounceUS is the minimum spacing between accepted zero-cross edges
// (spec.md §4.1: "discard when d<5000" — contact bounce / noise pulses at
// <200 Hz rate).
const DebounceUS = 5000

// ZeroCross translates a stream of rising-edge zero-cross events into the
// gate-arm sequence of spec.md §4.1. It is driven by a goroutine that
// blocks on an edge source the way the teacher's gpioirq.Worker blocks on
// its ISR queue channel — the hardware interrupt becomes a channel-wait
// instead of a callback, but the debounce/latch/arm logic is identical.
type ZeroCross struct {
	Gate     *GateDeadline
	Interval *ZeroCrossInterval
	RatePct  *PowerRate

	RateFn func() float64 // calcPowerRate(), §4.3 — injected so tests can control it

	lastEdge  time.Time
	armed     bool
	debounces uint64
}

// Debounces reports how many edges were discarded for arriving inside the
// debounce window, for diagnostics.
func (z *ZeroCross) Debounces() uint64 { return atomic.LoadUint64(&z.debounces) }

// OnEdge runs spec.md §4.1 steps 1-4 for one rising edge observed at now.
func (z *ZeroCross) OnEdge(now time.Time) {
	if !z.lastEdge.IsZero() {
		d := now.Sub(z.lastEdge).Microseconds()
		if d < DebounceUS {
			atomic.AddUint64(&z.debounces, 1)
			return
		}
		z.Interval.Store(uint32(d))
	}
	z.lastEdge = now

	halfPeriod := z.Interval.Load()
	if halfPeriod == 0 {
		return // no measured interval yet; nothing to arm
	}

	rate := 0.0
	if z.RateFn != nil {
		rate = z.RateFn()
	}
	pct := uint8(mathx.Clamp(math.Round(rate*100), 0, 100))
	z.RatePct.Store(pct)

	switch {
	case rate >= 1.0:
		// Bypass the pulse scheduler: hold the gate HIGH continuously
		// (spec.md §4.1 edge case). Expressed as an UP deadline of now,
		// so the gate timer fires HIGH on its very next tick and then
		// immediately re-arms DOWN at a deadline far enough out that the
		// next zero-cross re-arms it before it would ever fire LOW.
		z.Gate.Store(HeatUp, now.UnixNano())
	case rate <= 0:
		// do not arm (spec.md §4.1 edge case)
	default:
		// PhaseDelay is already the time from this edge to firing (it is
		// monotone non-increasing in rate: more power, less delay), so the
		// deadline is the edge time plus phi directly, not its complement.
		phi := PhaseDelay(rate, halfPeriod)
		deadline := now.Add(time.Duration(phi) * time.Microsecond)
		z.Gate.Store(HeatUp, deadline.UnixNano())
	}
}
