package types

import "testing"

func TestTempFromFloat_RoundTrip(t *testing.T) {
	cases := []float64{0, 25, -10, 99.5, -0.25}
	for _, c := range cases {
		got := TempFromFloat(c).Float()
		if diff := got - c; diff > 1.0/256 || diff < -1.0/256 {
			t.Errorf("TempFromFloat(%v).Float() = %v, want within 1/256", c, got)
		}
	}
}

func TestTempFromFloat_Rounding(t *testing.T) {
	// 25.0 * 256 = 6400 exactly.
	if got := TempFromFloat(25); got != 6400 {
		t.Errorf("TempFromFloat(25) = %v, want 6400", got)
	}
	if got := TempFromFloat(-25); got != -6400 {
		t.Errorf("TempFromFloat(-25) = %v, want -6400", got)
	}
}
