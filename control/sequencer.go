package control

import (
	"time"

	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/types"
)

// NVWriter persists a tuning coefficient to the keyed non-volatile store
// (spec.md §6: "written only by the sequencer (SET_* ops)"). The concrete
// implementation lives outside the control kernel per spec.md §1's
// out-of-scope list.
type NVWriter interface {
	WriteFloat32(addr uint32, v float32) error
}

// MelodyPlayer is the out-of-core buzzer collaborator the sequencer calls
// on FINISH and on a HOLD's expiry (spec.md §1, §4.5). It blocks the
// foreground for up to several seconds; the zero-cross and gate-timer
// goroutines keep regulating heat while it plays (spec.md §5, §9).
type MelodyPlayer interface {
	PlayFinish()
	PlayNotification()
}

// dwellSeconds is the TARGET_TEMPERATURE settle window (spec.md §4.5: the
// TARGET op advances after the measured temperature sits within
// targetTolerance of target for this long).
const dwellSeconds = 120

// targetTolerance is the TARGET_TEMPERATURE band (spec.md §4.5: "|current -
// target| ≤ 0.5").
const targetTolerance = 0.5

// Sequencer walks the cooking program's command array, one opcode per call,
// advancing the execution cursor on completion (spec.md §4.5). It is
// re-entered every main-loop pass; Step must be called with a monotonic
// clock source (time.Now in production, a fake clock in tests).
type Sequencer struct {
	Program *types.Program
	State   *types.ControlState
	NV      NVWriter
	Melody  MelodyPlayer

	previousOp    types.Opcode
	operationTime float64 // seconds accumulated in the current op
	previousTime  time.Time
	primed        bool
	lastCmdID     uint8 // cursor observed on the previous Step, to detect slot changes with a repeated opcode
}

// Step runs one pass of the sequencer against the slot at Program.CmdID.
// It returns nothing: an unknown opcode latches INVALID_COMMAND into lat,
// and the remainTime wire value for a HOLD is read with RemainTime.
func (s *Sequencer) Step(now time.Time, lat *errcode.Latch) {
	if !s.primed {
		s.previousTime = now
		s.primed = true
	}
	delta := now.Sub(s.previousTime).Seconds()
	slot := s.Program.Current()
	changed := s.previousOp != slot.Op || s.Program.CmdID != s.lastCmdID
	if changed {
		s.operationTime = 0
		s.onEntry(slot)
	}

	switch slot.Op {
	case types.OpNOP:
		// never advances

	case types.OpFinish:
		s.Program.Finish()
		s.State.ResetSetpoints()
		if s.Melody != nil {
			s.Melody.PlayFinish()
		}

	case types.OpTargetTemperature:
		if abs(s.State.CurrentTemperature-s.State.TargetTemperature) <= targetTolerance {
			s.operationTime += delta
		} else {
			s.operationTime = 0
		}
		if s.operationTime >= dwellSeconds {
			s.Program.Advance()
		}

	case types.OpHold:
		s.operationTime += delta

	case types.OpSetKp, types.OpSetTi, types.OpSetTd, types.OpSetPhaseDelay, types.OpSetPower:
		s.Program.Advance()

	default:
		lat.Set(errcode.InvalidCommand)
	}

	s.previousTime = now
	s.previousOp = slot.Op
	s.lastCmdID = s.Program.CmdID
}

// onEntry runs the "On entry" column of spec.md §4.5's table: side effects
// that happen exactly once when a slot starts executing.
func (s *Sequencer) onEntry(slot types.CommandSlot) {
	switch slot.Op {
	case types.OpTargetTemperature:
		s.State.TargetTemperature = slot.TargetTemperatureC()
	case types.OpSetPhaseDelay:
		s.State.PhaseDelayUS = slot.PhaseDelayUS()
	case types.OpSetKp:
		v := float64(slot.Gain())
		s.State.Tuning.Kp = v
		if s.NV != nil {
			s.NV.WriteFloat32(types.NVAddrKp, slot.Gain())
		}
	case types.OpSetTi:
		v := float64(slot.Gain())
		s.State.Tuning.Ti = v
		if s.NV != nil {
			s.NV.WriteFloat32(types.NVAddrTi, slot.Gain())
		}
	case types.OpSetTd:
		v := float64(slot.Gain())
		s.State.Tuning.Td = v
		if s.NV != nil {
			s.NV.WriteFloat32(types.NVAddrTd, slot.Gain())
		}
	}
}

// RemainTime computes the wire-encoded remaining time for the current HOLD
// slot, or 0 for any other opcode (spec.md §4.5, §8 scenario 4). It also
// reports whether the HOLD has just expired, in which case the caller
// should play the notification melody and advance the cursor — that side
// effect is performed by HoldExpire, not here, so RemainTime stays a pure
// read usable by the status publisher on every pass.
func (s *Sequencer) RemainTime(slot types.CommandSlot) (remain uint16, expired bool) {
	if slot.Op != types.OpHold {
		return 0, false
	}
	durationSeconds := int(slot.HoldMinutes()) * 60
	elapsed := int(s.operationTime)
	left := durationSeconds - elapsed
	if left <= 0 {
		return 0, true
	}
	return types.EncodeRemainTime(left), false
}

// HoldExpire advances past an expired HOLD, playing the notification
// melody exactly once (spec.md §4.5's "time >= duration*60 => play
// notification melody; ++cmdid").
func (s *Sequencer) HoldExpire() {
	if s.Melody != nil {
		s.Melody.PlayNotification()
	}
	s.Program.Advance()
	s.operationTime = 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
