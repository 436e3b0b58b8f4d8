package nvstore

import (
	"math"

	"github.com/rspg/heatjar/types"
)

// Kp must fall in this open interval to be trusted (spec.md §6: "if NaN or
// out of (1e-6, 1e4) for Kp ... the default is written back").
const (
	kpMin = 1e-6
	kpMax = 1e4
)

// Ti/Td must fall in this interval (spec.md §6: "outside [0, 9e4) for
// Ti/Td").
const (
	tiTdMin = 0
	tiTdMax = 9e4
)

// ValidKp reports whether v is a plausible Kp value.
func ValidKp(v float64) bool { return !math.IsNaN(v) && v > kpMin && v < kpMax }

// ValidTiTd reports whether v is a plausible Ti or Td value.
func ValidTiTd(v float64) bool { return !math.IsNaN(v) && v >= tiTdMin && v < tiTdMax }

// LoadTuning reads the Kp/Ti/Td triple from store at boot, per spec.md §6:
// any implausible value is replaced by its default and written back so
// the store is self-healing across boots (spec.md §8 scenario 1).
func LoadTuning(store Store) (types.Tuning, error) {
	kp, err := store.ReadFloat32(types.NVAddrKp)
	if err != nil {
		return types.Tuning{}, err
	}
	ti, err := store.ReadFloat32(types.NVAddrTi)
	if err != nil {
		return types.Tuning{}, err
	}
	td, err := store.ReadFloat32(types.NVAddrTd)
	if err != nil {
		return types.Tuning{}, err
	}

	out := types.Tuning{Kp: float64(kp), Ti: float64(ti), Td: float64(td)}
	dirty := false

	if !ValidKp(out.Kp) {
		out.Kp = types.DefaultTuning.Kp
		dirty = true
	}
	if !ValidTiTd(out.Ti) {
		out.Ti = types.DefaultTuning.Ti
		dirty = true
	}
	if !ValidTiTd(out.Td) {
		out.Td = types.DefaultTuning.Td
		dirty = true
	}

	if dirty {
		if err := store.WriteFloat32(types.NVAddrKp, float32(out.Kp)); err != nil {
			return out, err
		}
		if err := store.WriteFloat32(types.NVAddrTi, float32(out.Ti)); err != nil {
			return out, err
		}
		if err := store.WriteFloat32(types.NVAddrTd, float32(out.Td)); err != nil {
			return out, err
		}
	}

	return out, nil
}
