//go:build tinygo

// Command heatjar-mcu is the bare-metal build of the heat jar control
// kernel (spec.md §6), wiring the tinygo hal backend instead of the
// Linux-SBC one, in the same cmd/pico-*-main role the teacher gives its
// own microcontroller entrypoints.
package main

import (
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"github.com/rspg/heatjar/control"
	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/hal"
	"github.com/rspg/heatjar/protocol"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/fmtx"
)

// Pin numbering for this deployment (spec.md §6: "deployment-specific"),
// Pico GP numbers.
const (
	pinZeroCross = 17
	pinGate      = 27
	pinPower     = 22
	pinHeartbeat = 24
	pinADC       = 26
)

// memTuning is an in-memory stand-in for the persisted tuning triple,
// used when no flash-backed nvstore.Store is wired for this build;
// spec.md §1 places the concrete NV medium out of scope, and the
// file-backed nvstore.FileStore assumes a filesystem this bare-metal
// target doesn't have.
type memTuning struct{ values [3]float32 }

func (m *memTuning) ReadFloat32(addr uint32) (float32, error) { return m.values[addr/4], nil }
func (m *memTuning) WriteFloat32(addr uint32, v float32) error {
	m.values[addr/4] = v
	return nil
}

func main() {
	time.Sleep(1500 * time.Millisecond)
	fmtx.Print("[boot] heatjar-mcu starting\n")

	zcPin, err := hal.NewZeroCrossPin(pinZeroCross)
	if err != nil {
		fmtx.Print("[boot] zero-cross pin failed\n")
		return
	}
	gatePin, err := hal.NewGatePin(pinGate)
	if err != nil {
		fmtx.Print("[boot] gate pin failed\n")
		return
	}
	powerSw, err := hal.NewPowerSwitch(pinPower)
	if err != nil {
		fmtx.Print("[boot] power switch failed\n")
		return
	}
	heartbeat, err := hal.NewHeartbeatLED(pinHeartbeat)
	if err != nil {
		fmtx.Print("[boot] heartbeat led failed\n")
		return
	}
	adc := hal.NewMachineADC(pinADC)

	transport, err := hal.NewUARTTransport(uartx.UART1, uartx.UARTConfig{BaudRate: 2400})
	if err != nil {
		fmtx.Print("[boot] uart transport failed\n")
		return
	}

	store := &memTuning{values: [3]float32{0.3, 0.01, 0}}

	state := &types.ControlState{Tuning: types.DefaultTuning}
	program := &types.Program{}
	var lat errcode.Latch

	gate := &control.GateDeadline{}
	interval := &control.ZeroCrossInterval{}
	interval.Store(10000) // 50 Hz mains, 10ms half-cycle
	rate := &control.PowerRate{}

	rateFn := func() float64 {
		return control.Rate(state.TargetTemperature, state.CurrentTemperature, state.TemperatureErrorIntegral, state.Tuning.Kp)
	}

	zc := &control.ZeroCross{Gate: gate, Interval: interval, RatePct: rate, RateFn: rateFn}
	gt := &control.GateTimer{Gate: gate, Interval: interval, Pin: gatePin, RateFn: rateFn}

	stop := make(chan struct{})
	go func() {
		for {
			edge, err := zcPin.WaitEdge()
			if err != nil {
				return
			}
			zc.OnEdge(edge)
		}
	}()
	go gt.Run(stop, time.Now)

	sampler := &control.Sampler{Params: control.ThermistorParams{B: 3950, R0: 58.3, T0: 25, Rv: 1.5, Vref: 4.7, VrefInt: 1.1}}
	sequencer := &control.Sequencer{Program: program, State: state, NV: store}

	var inLine protocol.LineBuffer
	var lastPublish time.Time
	ticker := time.NewTicker(1 * time.Millisecond)

	for range ticker.C {
		if powerSw.Pressed() {
			continue
		}

		raw, _ := adc.Read()
		if control.Plausible(raw, 10, 1013) {
			if sampler.AddSample(raw, state.TargetTemperature, state.Tuning.Ti) {
				state.CurrentTemperature = sampler.CurrentTemperature
				state.TemperatureErrorIntegral = sampler.TemperatureErrorIntegral
				if control.Overlimit(state.CurrentTemperature) {
					lat.Set(errcode.TemperatureOverlimit)
				}
			}
		} else {
			lat.Set(errcode.TemperatureFeedbackFailed)
		}

		if lat.Get().IsError() {
			state.ResetSetpoints()
		} else {
			sequencer.Step(time.Now(), &lat)
			if _, expired := sequencer.RemainTime(program.Current()); expired {
				sequencer.HoldExpire()
			}
		}

		reply, err := transport.ReadLine(time.Now())
		if err == nil {
			// ReadLine strips the '\n'; feed it back so a frame without
			// a '.' terminator still completes.
			for _, bt := range append(reply, '\n') {
				if line, complete := inLine.Feed(bt, protocol.DotOrNewlineTerminator); complete {
					if slot, code, ok := protocol.ParseCommandFrame(line); ok {
						if code == errcode.Standby {
							code = protocol.Ingest(program, slot)
						}
						lat.Set(code)
					}
				}
			}
		}

		if time.Since(lastPublish) >= time.Second {
			lastPublish = time.Now()
			heartbeat.Toggle()
			status := types.Status{
				Code:        lat.Get(),
				CmdID:       program.CmdID,
				CmdNum:      program.CmdNum,
				Power:       rate.Load(),
				Temperature: types.TempFromFloat(state.CurrentTemperature),
			}
			if remain, _ := sequencer.RemainTime(program.Current()); remain != 0 {
				status.RemainTime = remain
			}
			if code := protocol.PublishStatus(transport, status); code != errcode.Standby {
				lat.Set(code)
			}
		}
	}
}
