package protocol

import (
	"bytes"

	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/conv"
)

// CommandServiceID identifies the command-ingest service in a WV frame
// (spec.md §4.6: "<serviceId> = 001B").
const CommandServiceID = "001B"

var wvPrefix = []byte("WV," + CommandServiceID + ",")

// Slot addressing bytes (spec.md §4.6).
const (
	SlotAppend    = 0x80
	SlotOverwrite = 0x81
)

// ParseCommandFrame decodes one assembled line (terminator already
// stripped by LineBuffer) as a WV command frame. It returns the decoded
// 8-byte command slot and ok=true on success; ok=false means the line did
// not match the expected shape at all (e.g. garbage on the wire) and the
// caller should not touch status.code for it. A line that DOES match the
// "WV,001B,..." shape but carries a malformed hex payload is reported via
// the code return instead, per spec.md §4.6: "Violations set status.code
// := INVALID_ARGUMENT".
func ParseCommandFrame(line []byte) (slot types.CommandSlot, code errcode.Code, ok bool) {
	if !bytes.HasPrefix(line, wvPrefix) {
		return types.CommandSlot{}, errcode.Standby, false
	}
	hex := line[len(wvPrefix):]
	if len(hex) != types.CommandSlotSize*2 {
		return types.CommandSlot{}, errcode.InvalidArgument, true
	}
	var raw [types.CommandSlotSize]byte
	if !conv.HexToBytes(raw[:], hex) {
		return types.CommandSlot{}, errcode.InvalidArgument, true
	}
	return types.DecodeCommandSlot(raw), errcode.Standby, true
}

// ResolveSlotIndex maps a decoded command slot's Index byte to the
// absolute program slot it addresses (spec.md §4.6's slot-addressing
// rule), given the program's current append and execute cursors. ok is
// false (with code=COMMAND_OVERFLOW) when the resolved slot is out of
// range.
func ResolveSlotIndex(index uint8, prog *types.Program) (slotIdx uint8, code errcode.Code, ok bool) {
	var resolved int
	switch index {
	case SlotAppend:
		resolved = int(prog.CmdNum)
	case SlotOverwrite:
		resolved = int(prog.CmdID)
	default:
		resolved = int(index)
	}
	if resolved >= types.ProgramCapacity {
		return 0, errcode.CommandOverflow, false
	}
	return uint8(resolved), errcode.Standby, true
}

// Ingest applies one decoded command slot to the program array, per
// spec.md §4.6: append advances CmdNum, absolute/overwrite addressing
// leaves it untouched. A rejected frame leaves the program array
// unchanged (spec.md §8 invariant).
func Ingest(prog *types.Program, slot types.CommandSlot) errcode.Code {
	resolved, code, ok := ResolveSlotIndex(slot.Index, prog)
	if !ok {
		return code
	}
	prog.Slots[resolved] = slot
	if slot.Index == SlotAppend && prog.CmdNum < types.ProgramCapacity {
		prog.CmdNum++
	}
	return errcode.Standby
}
