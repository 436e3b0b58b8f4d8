//go:build !tinygo

// Command heatjar is the Linux-SBC build of the heat jar control kernel
// (spec.md §6): it wires the zero-cross and gate-timer goroutines, the
// temperature sampler, the cooking sequencer, and the command-ingest/
// status-publish protocol engine over the in-process bus, the way the
// teacher's root main.go wires hal.Run and the power/thermal supervisor
// loop over the same bus.
package main

import (
	"flag"
	"time"

	"github.com/rspg/heatjar/bus"
	"github.com/rspg/heatjar/config"
	"github.com/rspg/heatjar/control"
	"github.com/rspg/heatjar/display"
	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/hal"
	"github.com/rspg/heatjar/nvstore"
	"github.com/rspg/heatjar/protocol"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/fmtx"
	"github.com/rspg/heatjar/x/strx"
)

// Bus topics the foreground loop and the protocol/sequencer publish on,
// mirroring the teacher's bus.T(...) topic-builder idiom. Status and fault
// are shared with the display package so its subscriber and the
// foreground loop's publisher always agree.
var (
	tTemperature = bus.T("heatjar", "temperature", "value")
	tStatus      = display.TopicStatus
	tFault       = display.TopicFault
)

func main() {
	cfgPath := flag.String("config", "", "path to device config YAML")
	flag.Parse()

	cfg, err := config.Load(strx.Coalesce(*cfgPath, "heatjar.yaml"))
	if err != nil {
		fmtx.Printf("[boot] config load failed: %v\n", err)
		return
	}

	if err := hal.InitHost(); err != nil {
		fmtx.Printf("[boot] hal init failed: %v\n", err)
		return
	}

	store, err := nvstore.NewFileStoreBlank(cfg.NVStorePath, 12)
	if err != nil {
		fmtx.Printf("[boot] nvstore open failed: %v\n", err)
		return
	}
	tuning, err := nvstore.LoadTuning(store)
	if err != nil {
		fmtx.Printf("[boot] nvstore load failed: %v\n", err)
		return
	}
	fmtx.Printf("[boot] tuning loaded: %+v\n", tuning)

	zcPin, err := hal.NewZeroCrossPin(cfg.Pins.ZeroCross)
	if err != nil {
		fmtx.Printf("[boot] zero-cross pin: %v\n", err)
		return
	}
	gatePin, err := hal.NewGatePin(cfg.Pins.Gate)
	if err != nil {
		fmtx.Printf("[boot] gate pin: %v\n", err)
		return
	}
	powerSw, err := hal.NewPowerSwitch(cfg.Pins.Power)
	if err != nil {
		fmtx.Printf("[boot] power switch: %v\n", err)
		return
	}
	heartbeat, err := hal.NewHeartbeatLED(cfg.Pins.Heartbeat)
	if err != nil {
		fmtx.Printf("[boot] heartbeat led: %v\n", err)
		return
	}
	adc := hal.NewSysfsADC(cfg.Pins.Thermistor)
	transport, err := hal.NewSerialTransport(cfg.Serial.Device)
	if err != nil {
		fmtx.Printf("[boot] serial transport: %v\n", err)
		return
	}

	state := &types.ControlState{Tuning: tuning}
	program := &types.Program{}
	var lat errcode.Latch

	gate := &control.GateDeadline{}
	interval := &control.ZeroCrossInterval{}
	interval.Store(cfg.ZeroCrossHalfPeriodUS())
	rate := &control.PowerRate{}

	rateFn := func() float64 {
		return control.Rate(state.TargetTemperature, state.CurrentTemperature, state.TemperatureErrorIntegral, state.Tuning.Kp)
	}

	zc := &control.ZeroCross{Gate: gate, Interval: interval, RatePct: rate, RateFn: rateFn}
	gt := &control.GateTimer{Gate: gate, Interval: interval, Pin: gatePin, RateFn: rateFn}

	stopISR := make(chan struct{})
	defer close(stopISR)

	// zero-cross goroutine: translates the ISR pair into a blocking edge
	// loop, the same translation irq_worker.go applies to its GPIO ISR.
	go func() {
		for {
			edge, err := zcPin.WaitEdge()
			if err != nil {
				return
			}
			zc.OnEdge(edge)
		}
	}()

	// gate-timer goroutine: the ~10 kHz tick, driven by a ticker instead
	// of a hardware timer compare register.
	go gt.Run(stopISR, time.Now)

	b := bus.NewBus(4)
	conn := b.NewConnection("control")

	// The OLED panel itself is out of scope (spec.md §1): Disp stays nil
	// here, which makes the display service a no-op, but the bus carries
	// the same status/fault traffic a real panel would subscribe to.
	disp := &display.Service{}
	go disp.Run(stopISR, b.NewConnection("display"))

	sampler := &control.Sampler{Params: cfg.Thermistor.ThermistorParams()}
	sequencer := &control.Sequencer{Program: program, State: state, NV: store}

	hbTicker := time.NewTicker(500 * time.Millisecond)
	defer hbTicker.Stop()
	fgTicker := time.NewTicker(1 * time.Millisecond)
	defer fgTicker.Stop()

	fmtx.Printf("[boot] entering foreground loop\n")

	var inLine protocol.LineBuffer
	var lastPublish time.Time

	for range fgTicker.C {
		select {
		case <-hbTicker.C:
			heartbeat.Toggle()
		default:
		}

		if powerSw.Pressed() {
			continue
		}

		raw, err := adc.Read()
		if err == nil {
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
		}

		if lat.Get().IsError() {
			state.ResetSetpoints()
		} else {
			sequencer.Step(time.Now(), &lat)
			if _, expired := sequencer.RemainTime(program.Current()); expired {
				sequencer.HoldExpire()
			}
		}

		// Non-blocking drain: the transport's background pump has
		// already buffered anything available in its RX ring.
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
			conn.Publish(conn.NewMessage(tStatus, status, true))
			conn.Publish(conn.NewMessage(tTemperature, state.CurrentTemperature, true))
			if lat.Get().IsError() {
				conn.Publish(conn.NewMessage(tFault, lat.Get(), false))
			}
		}
	}
}
