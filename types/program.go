package types

// ProgramCapacity is the fixed size of the cooking program array
// (spec.md §3: "Fixed capacity 32 slots").
const ProgramCapacity = 32

// Program is the fixed-capacity, no-heap command slot array. CmdID is the
// execution cursor; CmdNum is the upload append cursor. Both index into
// Slots and are always kept in [0, ProgramCapacity].
type Program struct {
	Slots  [ProgramCapacity]CommandSlot
	CmdID  uint8
	CmdNum uint8
}

// Current returns the slot the sequencer should execute next.
func (p *Program) Current() CommandSlot { return p.Slots[p.CmdID] }

// Finish resets the program to its boot lifecycle state: cursor and append
// pointer to zero, slot 0 cleared to NOP (spec.md §3's "program array
// lifecycle").
func (p *Program) Finish() {
	p.CmdID = 0
	p.CmdNum = 0
	p.Slots[0] = CommandSlot{Op: OpNOP}
}

// Advance moves the execution cursor to the next slot, saturating at the
// last valid index so the sequencer never executes slot >= ProgramCapacity
// (spec.md §8's invariant).
func (p *Program) Advance() {
	if int(p.CmdID) < ProgramCapacity-1 {
		p.CmdID++
	}
}
