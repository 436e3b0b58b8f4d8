package nvstore

import (
	"path/filepath"
	"testing"

	"github.com/rspg/heatjar/types"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nv.bin")
	s, err := NewFileStore(path, 12)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFloat32(types.NVAddrKp, 0.42); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadFloat32(types.NVAddrKp)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.42 {
		t.Errorf("got %v, want 0.42", got)
	}
}

func TestLoadTuning_ColdBootWithBlankStoreUsesDefaults(t *testing.T) {
	// spec.md §8 scenario 1: NV contains 0xFF bytes => defaults written back.
	path := filepath.Join(t.TempDir(), "nv.bin")
	s, err := NewFileStoreBlank(path, 12)
	if err != nil {
		t.Fatal(err)
	}
	tuning, err := LoadTuning(s)
	if err != nil {
		t.Fatal(err)
	}
	if tuning != types.DefaultTuning {
		t.Errorf("tuning = %+v, want defaults %+v", tuning, types.DefaultTuning)
	}

	// And it should have been written back, persisting across a second load.
	kp, _ := s.ReadFloat32(types.NVAddrKp)
	if kp != float32(types.DefaultTuning.Kp) {
		t.Errorf("Kp not written back, got %v", kp)
	}
}

func TestLoadTuning_ValidValuesPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nv.bin")
	s, err := NewFileStore(path, 12)
	if err != nil {
		t.Fatal(err)
	}
	s.WriteFloat32(types.NVAddrKp, 0.55)
	s.WriteFloat32(types.NVAddrTi, 0.02)
	s.WriteFloat32(types.NVAddrTd, 0.01)

	tuning, err := LoadTuning(s)
	if err != nil {
		t.Fatal(err)
	}
	want := types.Tuning{Kp: float64(float32(0.55)), Ti: float64(float32(0.02)), Td: float64(float32(0.01))}
	if tuning != want {
		t.Errorf("tuning = %+v, want %+v", tuning, want)
	}
}

func TestValidKp(t *testing.T) {
	if !ValidKp(0.3) {
		t.Error("0.3 should be valid")
	}
	if ValidKp(0) {
		t.Error("0 should be invalid (not > 1e-6 strictly, boundary)")
	}
	if ValidKp(1e5) {
		t.Error("1e5 should be invalid (>= 1e4)")
	}
}
