package control

import (
	"testing"
	"time"
)

func TestZeroCross_DebouncesFastEdges(t *testing.T) {
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	zc.OnEdge(now.Add(3 * time.Millisecond)) // < 5ms, spec.md §4.1/§8: discarded
	if zc.Debounces() != 1 {
		t.Errorf("expected 1 debounced edge, got %d", zc.Debounces())
	}
	if zc.Interval.Load() != 0 {
		t.Errorf("debounced edge must not update the latched interval, got %d", zc.Interval.Load())
	}
}

func TestZeroCross_LatchesInterval(t *testing.T) {
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}, RateFn: func() float64 { return 0 }}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	now = now.Add(10 * time.Millisecond) // 10000us, nominal 50Hz half-period
	zc.OnEdge(now)
	if got := zc.Interval.Load(); got != 10000 {
		t.Errorf("Interval = %d, want 10000", got)
	}
}

func TestZeroCross_ZeroRateDoesNotArm(t *testing.T) {
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}, RateFn: func() float64 { return 0 }}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	zc.OnEdge(now.Add(10 * time.Millisecond))
	mode, _ := zc.Gate.Load()
	if mode != HeatIdle {
		t.Errorf("rate<=0 must not arm the gate, mode=%v", mode)
	}
}

func TestZeroCross_FullRateBypassesScheduler(t *testing.T) {
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}, RateFn: func() float64 { return 1.0 }}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	now = now.Add(10 * time.Millisecond)
	zc.OnEdge(now)
	mode, deadline := zc.Gate.Load()
	if mode != HeatUp {
		t.Errorf("rate=1.0 should arm HeatUp immediately, mode=%v", mode)
	}
	if deadline != now.UnixNano() {
		t.Errorf("rate=1.0 bypass deadline = %d, want %d (now)", deadline, now.UnixNano())
	}
	if zc.RatePct.Load() != 100 {
		t.Errorf("RatePct = %d, want 100", zc.RatePct.Load())
	}
}

func TestZeroCross_MidRateArmsGateWithPhaseDelay(t *testing.T) {
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}, RateFn: func() float64 { return 0.5 }}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	now = now.Add(10 * time.Millisecond)
	zc.OnEdge(now)

	mode, deadline := zc.Gate.Load()
	if mode != HeatUp {
		t.Fatalf("expected HeatUp, got %v", mode)
	}
	wantDeadline := now.Add(5000 * time.Microsecond).UnixNano()
	diff := deadline - wantDeadline
	if diff < -100000 || diff > 100000 { // 100us tolerance
		t.Errorf("deadline = %d, want ~%d", deadline, wantDeadline)
	}
	if zc.RatePct.Load() != 50 {
		t.Errorf("RatePct = %d, want 50", zc.RatePct.Load())
	}
}

func TestZeroCross_LowRateFiresLateInTheHalfCycle(t *testing.T) {
	// At a low commanded rate the fire deadline must be PhaseDelay(rate)
	// after the edge -- late in the half-cycle, close to the next edge --
	// not its complement (which would fire early and, paired with the
	// gate timer's on-duration, latch the gate HIGH across the boundary).
	zc := &ZeroCross{Gate: &GateDeadline{}, Interval: &ZeroCrossInterval{}, RatePct: &PowerRate{}, RateFn: func() float64 { return 0.1 }}
	now := time.Unix(0, 0)
	zc.OnEdge(now)
	now = now.Add(10 * time.Millisecond)
	zc.OnEdge(now)

	mode, deadline := zc.Gate.Load()
	if mode != HeatUp {
		t.Fatalf("expected HeatUp, got %v", mode)
	}
	want := PhaseDelay(0.1, 10000)
	wantDeadline := now.Add(time.Duration(want) * time.Microsecond).UnixNano()
	if deadline != wantDeadline {
		t.Errorf("deadline = %d, want %d (PhaseDelay(0.1)=%dus after the edge)", deadline, wantDeadline, want)
	}
	// Sanity: a low rate should fire well past the half-cycle midpoint.
	if want < 5000 {
		t.Errorf("PhaseDelay(0.1, 10000) = %d, want > 5000 (low rate fires late)", want)
	}
}
