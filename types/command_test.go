package types

import "testing"

func TestCommandSlot_RoundTrip(t *testing.T) {
	var hold CommandSlot
	hold.Op = OpHold
	hold.Index = 2
	hold.SetHoldMinutes(120)

	b := hold.Bytes()
	got := DecodeCommandSlot(b)
	if got != hold {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, hold)
	}
	if got.HoldMinutes() != 120 {
		t.Fatalf("HoldMinutes() = %d, want 120", got.HoldMinutes())
	}
}

func TestCommandSlot_GainRoundTrip(t *testing.T) {
	var s CommandSlot
	s.Op = OpSetKp
	s.SetGain(0.275)

	b := s.Bytes()
	got := DecodeCommandSlot(b)
	if got.Gain() != float32(0.275) {
		t.Fatalf("Gain() = %v, want 0.275", got.Gain())
	}
}

func TestCommandSlot_PhaseDelayRoundTrip(t *testing.T) {
	var s CommandSlot
	s.Op = OpSetPhaseDelay
	s.SetPhaseDelayUS(4200)

	b := s.Bytes()
	got := DecodeCommandSlot(b)
	if got.PhaseDelayUS() != 4200 {
		t.Fatalf("PhaseDelayUS() = %d, want 4200", got.PhaseDelayUS())
	}
}

func TestProgram_NeverExceedsCapacity(t *testing.T) {
	var p Program
	for i := 0; i < ProgramCapacity*2; i++ {
		p.Advance()
	}
	if int(p.CmdID) >= ProgramCapacity {
		t.Fatalf("CmdID = %d, must stay < %d", p.CmdID, ProgramCapacity)
	}
}

func TestProgram_Finish(t *testing.T) {
	var p Program
	p.CmdID = 5
	p.CmdNum = 10
	p.Slots[0] = CommandSlot{Op: OpTargetTemperature}

	p.Finish()

	if p.CmdID != 0 || p.CmdNum != 0 {
		t.Fatalf("Finish() did not reset cursors: cmdid=%d cmdnum=%d", p.CmdID, p.CmdNum)
	}
	if p.Slots[0].Op != OpNOP {
		t.Fatalf("Finish() did not clear slot 0 to NOP, got %v", p.Slots[0].Op)
	}
}
