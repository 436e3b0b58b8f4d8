//go:build !tinygo

// Command jarctl is an operator tool for bring-up and bench testing of a
// heat jar over its wireless serial link: it reads one command per line
// from stdin, tokenizes it with shlex the way a shell would, and sends the
// resulting WV,001B,<hex> command frame, printing whatever the device
// replies.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"github.com/rspg/heatjar/hal"
	"github.com/rspg/heatjar/protocol"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/conv"
)

// Supported verbs, one per opcode a bench operator is expected to issue
// by hand (spec.md §4.5); FINISH and HOLD/TARGET take no or one plain
// argument, kp/ti/td take a single float, and phase/power a single integer.
var verbs = map[string]types.Opcode{
	"nop":    types.OpNOP,
	"finish": types.OpFinish,
	"target": types.OpTargetTemperature,
	"hold":   types.OpHold,
	"kp":     types.OpSetKp,
	"ti":     types.OpSetTi,
	"td":     types.OpSetTd,
	"phase":  types.OpSetPhaseDelay,
	"power":  types.OpSetPower,
}

func buildSlot(fields []string) (types.CommandSlot, error) {
	if len(fields) == 0 {
		return types.CommandSlot{}, fmt.Errorf("empty command")
	}
	op, ok := verbs[fields[0]]
	if !ok {
		return types.CommandSlot{}, fmt.Errorf("unknown verb %q", fields[0])
	}
	slot := types.CommandSlot{Op: op, Index: protocol.SlotAppend}
	if len(fields) < 2 {
		return slot, nil
	}
	switch op {
	case types.OpTargetTemperature:
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return slot, err
		}
		slot.Params[0] = byte(v)
	case types.OpHold:
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return slot, err
		}
		slot.SetHoldMinutes(uint16(v))
	case types.OpSetKp, types.OpSetTi, types.OpSetTd:
		v, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return slot, err
		}
		slot.SetGain(float32(v))
	case types.OpSetPhaseDelay:
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return slot, err
		}
		slot.SetPhaseDelayUS(uint16(v))
	case types.OpSetPower:
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return slot, err
		}
		slot.Params[0] = byte(v)
	}
	return slot, nil
}

func main() {
	device := flag.String("device", "/dev/ttyUSB0", "wireless serial device")
	flag.Parse()

	tr, err := hal.NewSerialTransport(*device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jarctl: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("jarctl ready — verbs: nop finish target<C> hold<min> kp<f> ti<f> td<f> phase<us> power<pct>")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields, err := shlex.Split(scanner.Text())
		if err != nil || len(fields) == 0 {
			continue
		}
		slot, err := buildSlot(fields)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jarctl: %v\n", err)
			continue
		}
		raw := slot.Bytes()
		var hexBuf [types.CommandSlotSize * 2]byte
		conv.BytesToHex(hexBuf[:], raw[:])
		line := append([]byte("WV,"+protocol.CommandServiceID+","), hexBuf[:]...)
		if err := tr.WriteLine(line); err != nil {
			fmt.Fprintf(os.Stderr, "jarctl: write: %v\n", err)
			continue
		}
		reply, err := tr.ReadLine(time.Now().Add(protocol.ReplyTimeout))
		if err != nil {
			fmt.Fprintf(os.Stderr, "jarctl: no reply: %v\n", err)
			continue
		}
		fmt.Printf("<- %s\n", reply)
	}
}
