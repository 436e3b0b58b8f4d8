package control

import "testing"

func TestPhaseDelay_Bounds(t *testing.T) {
	const half = 10000 // us, 50 Hz mains

	if got := PhaseDelay(0, half); got != half {
		t.Errorf("PhaseDelay(0) = %d, want %d (gate never opens)", got, half)
	}
	if got := PhaseDelay(1, half); got != 0 {
		t.Errorf("PhaseDelay(1) = %d, want 0 (gate fires at zero-cross)", got)
	}
}

func TestPhaseDelay_Monotone(t *testing.T) {
	const half = 10000
	prev := PhaseDelay(0, half)
	for i := 1; i <= 100; i++ {
		rate := float64(i) / 100
		got := PhaseDelay(rate, half)
		if got > prev {
			t.Fatalf("PhaseDelay not monotone non-increasing at rate=%.2f: prev=%d got=%d", rate, prev, got)
		}
		prev = got
	}
}

func TestOnDuration_Bounds(t *testing.T) {
	const half = 10000
	if got := OnDuration(0, half); got != 0 {
		t.Errorf("OnDuration(0) = %d, want 0", got)
	}
	if got := OnDuration(1, half); got != half {
		t.Errorf("OnDuration(1) = %d, want %d", got, half)
	}
}

func TestOnDuration_Monotone(t *testing.T) {
	const half = 10000
	prev := OnDuration(0, half)
	for i := 1; i <= 100; i++ {
		rate := float64(i) / 100
		got := OnDuration(rate, half)
		if got < prev {
			t.Fatalf("OnDuration not monotone non-decreasing at rate=%.2f: prev=%d got=%d", rate, prev, got)
		}
		prev = got
	}
}

func TestPhaseDelay_HalfRateApprox(t *testing.T) {
	// spec.md §8 scenario 5: zeroCrossInterval=10000us, rate=0.5 =>
	// off-duration ~= 10000*acos(0)/pi ~= 5000us.
	got := PhaseDelay(0.5, 10000)
	if got < 4950 || got > 5050 {
		t.Errorf("PhaseDelay(0.5, 10000) = %d, want ~5000", got)
	}
}

func TestPhaseTable_MatchesFormula(t *testing.T) {
	table := NewPhaseTable()
	const half = 10000
	for i := 0; i <= 10; i++ {
		rate := float64(i) / 10
		want := PhaseDelay(rate, half)
		got := table.PhaseDelay(rate, half)
		diff := int64(want) - int64(got)
		if diff < 0 {
			diff = -diff
		}
		if diff > 50 {
			t.Errorf("table.PhaseDelay(%.1f) = %d, formula = %d, diff too large", rate, got, want)
		}
	}
}
