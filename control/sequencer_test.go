package control

import (
	"testing"
	"time"

	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/types"
)

type fakeNV struct {
	writes map[uint32]float32
}

func (f *fakeNV) WriteFloat32(addr uint32, v float32) error {
	if f.writes == nil {
		f.writes = map[uint32]float32{}
	}
	f.writes[addr] = v
	return nil
}

type fakeMelody struct {
	finishes, notifications int
}

func (f *fakeMelody) PlayFinish()       { f.finishes++ }
func (f *fakeMelody) PlayNotification() { f.notifications++ }

func newTestSequencer() (*Sequencer, *types.Program, *types.ControlState) {
	prog := &types.Program{}
	state := &types.ControlState{}
	seq := &Sequencer{Program: prog, State: state, NV: &fakeNV{}, Melody: &fakeMelody{}}
	return seq, prog, state
}

func TestSequencer_NOPNeverAdvances(t *testing.T) {
	seq, prog, _ := newTestSequencer()
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		seq.Step(now, &errcode.Latch{})
		now = now.Add(time.Second)
	}
	if prog.CmdID != 0 {
		t.Errorf("NOP should never advance, CmdID=%d", prog.CmdID)
	}
}

func TestSequencer_TargetTemperatureDwell(t *testing.T) {
	seq, prog, state := newTestSequencer()
	prog.Slots[0] = types.CommandSlot{Op: types.OpTargetTemperature, Params: [6]byte{8}}
	state.CurrentTemperature = 8.0 // within tolerance from the start

	now := time.Unix(0, 0)
	lat := &errcode.Latch{}
	seq.Step(now, lat) // entry: sets target=8
	if state.TargetTemperature != 8 {
		t.Fatalf("target not set on entry, got %v", state.TargetTemperature)
	}
	// Advance time just short of the dwell window.
	now = now.Add(dwellSeconds*time.Second - time.Second)
	seq.Step(now, lat)
	if prog.CmdID != 0 {
		t.Fatalf("advanced before dwell window elapsed")
	}
	now = now.Add(2 * time.Second)
	seq.Step(now, lat)
	if prog.CmdID != 1 {
		t.Errorf("expected advance to slot 1 after dwell window, CmdID=%d", prog.CmdID)
	}
}

func TestSequencer_TargetTemperatureResetsOnOvershoot(t *testing.T) {
	seq, prog, state := newTestSequencer()
	prog.Slots[0] = types.CommandSlot{Op: types.OpTargetTemperature, Params: [6]byte{8}}
	state.CurrentTemperature = 8.0

	now := time.Unix(0, 0)
	lat := &errcode.Latch{}
	seq.Step(now, lat)
	now = now.Add(100 * time.Second)
	seq.Step(now, lat) // 100s within tolerance

	state.CurrentTemperature = 20.0 // overshoot, out of tolerance
	now = now.Add(time.Second)
	seq.Step(now, lat)

	state.CurrentTemperature = 8.0
	now = now.Add(time.Duration(dwellSeconds-1) * time.Second)
	seq.Step(now, lat)
	if prog.CmdID != 0 {
		t.Errorf("dwell time should have reset after overshoot, CmdID=%d", prog.CmdID)
	}
}

func TestSequencer_HoldRemainTime(t *testing.T) {
	seq, prog, _ := newTestSequencer()
	slot := types.CommandSlot{Op: types.OpHold}
	slot.SetHoldMinutes(120)
	prog.Slots[0] = slot

	lat := &errcode.Latch{}
	now := time.Unix(0, 0)
	seq.Step(now, lat)
	remain, expired := seq.RemainTime(prog.Current())
	if expired {
		t.Fatal("should not be expired at t=0")
	}
	if remain&types.RemainMinutesFlag == 0 {
		t.Errorf("remain=%#x should have the minutes flag set at t=0", remain)
	}

	now = now.Add(3600 * time.Second)
	seq.Step(now, lat)
	remain, expired = seq.RemainTime(prog.Current())
	if expired {
		t.Fatal("should not be expired at t=3600s (60 min remain of 120)")
	}
	if remain != 3600 {
		t.Errorf("remain at t=3600s = %d, want 3600 (seconds, flag clear)", remain)
	}

	now = now.Add(3600 * time.Second)
	seq.Step(now, lat)
	_, expired = seq.RemainTime(prog.Current())
	if !expired {
		t.Fatal("should be expired at t=7200s")
	}
	seq.HoldExpire()
	if prog.CmdID != 1 {
		t.Errorf("HoldExpire should advance the cursor, CmdID=%d", prog.CmdID)
	}
	melody := seq.Melody.(*fakeMelody)
	if melody.notifications != 1 {
		t.Errorf("expected one notification melody play, got %d", melody.notifications)
	}
}

func TestSequencer_Finish(t *testing.T) {
	seq, prog, state := newTestSequencer()
	prog.Slots[0] = types.CommandSlot{Op: types.OpFinish}
	state.TargetTemperature = 99
	state.CurrentTemperature = 50

	seq.Step(time.Unix(0, 0), &errcode.Latch{})
	if state.TargetTemperature != 0 || state.CurrentTemperature != 0 {
		t.Errorf("FINISH should zero setpoints, got target=%v current=%v", state.TargetTemperature, state.CurrentTemperature)
	}
	if prog.Slots[0].Op != types.OpNOP {
		t.Errorf("FINISH should reset slot 0 to NOP, got op=%v", prog.Slots[0].Op)
	}
	melody := seq.Melody.(*fakeMelody)
	if melody.finishes != 1 {
		t.Errorf("expected one finish melody play, got %d", melody.finishes)
	}
}

func TestSequencer_SetKpPersistsAndAdvances(t *testing.T) {
	seq, prog, state := newTestSequencer()
	slot := types.CommandSlot{Op: types.OpSetKp}
	slot.SetGain(0.42)
	prog.Slots[0] = slot

	seq.Step(time.Unix(0, 0), &errcode.Latch{})
	if prog.CmdID != 1 {
		t.Errorf("SET_KP should advance immediately, CmdID=%d", prog.CmdID)
	}
	if state.Tuning.Kp < 0.419 || state.Tuning.Kp > 0.421 {
		t.Errorf("Kp not applied to control state, got %v", state.Tuning.Kp)
	}
	nv := seq.NV.(*fakeNV)
	if v, ok := nv.writes[types.NVAddrKp]; !ok || v < 0.419 || v > 0.421 {
		t.Errorf("Kp not persisted to NV store, got %v ok=%v", v, ok)
	}
}

func TestSequencer_NeverExceedsCapacity(t *testing.T) {
	seq, prog, _ := newTestSequencer()
	for i := range prog.Slots {
		s := types.CommandSlot{Op: types.OpSetPower}
		prog.Slots[i] = s
	}
	now := time.Unix(0, 0)
	lat := &errcode.Latch{}
	for i := 0; i < types.ProgramCapacity*2; i++ {
		seq.Step(now, lat)
		now = now.Add(time.Second)
		if int(prog.CmdID) >= types.ProgramCapacity {
			t.Fatalf("CmdID=%d exceeded capacity %d", prog.CmdID, types.ProgramCapacity)
		}
	}
}
