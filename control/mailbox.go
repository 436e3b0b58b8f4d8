package control

import "sync/atomic"

// GateDeadline is the logical atom (heatControlMode, heatControlTime) that
// the zero-cross ISR writes and the gate timer ISR reads every tick
// (spec.md §5: "The pair... is a logical atom; updates to it... must occur
// with the timer ISR masked"). On real hardware that masking is an
// interrupt-priority trick; here it is a single atomic snapshot exchange,
// the same "latest value wins, no torn reads" technique x/shmring uses for
// its ring indices, specialized to one value instead of a byte stream.
type GateDeadline struct {
	v atomic.Uint64
}

// packGate packs (mode, deadline) into one word so a single atomic
// store/load can never observe a torn pair. The deadline is held as signed
// whole microseconds in the upper 56 bits, which fits any real unix time;
// unpackGate converts it back to nanoseconds, so sub-microsecond precision
// is dropped.
func packGate(mode HeatMode, deadlineNS int64) uint64 {
	return uint64(deadlineNS/1000)<<8 | uint64(mode&0xFF)
}

func unpackGate(v uint64) (HeatMode, int64) {
	return HeatMode(v & 0xFF), (int64(v) >> 8) * 1000
}

// Store publishes a new (mode, deadline) pair. Called by the zero-cross
// ISR goroutine.
func (g *GateDeadline) Store(mode HeatMode, deadlineNS int64) {
	g.v.Store(packGate(mode, deadlineNS))
}

// Load reads the current (mode, deadline) pair. Called by the gate timer
// ISR goroutine.
func (g *GateDeadline) Load() (HeatMode, int64) {
	return unpackGate(g.v.Load())
}

// ZeroCrossInterval is the last measured zero-cross half-period in
// microseconds, read atomically per spec.md §5's ordering guarantee
// ("updated exactly once per half-cycle and read atomically").
type ZeroCrossInterval struct {
	us atomic.Uint32
}

func (z *ZeroCrossInterval) Store(us uint32) { z.us.Store(us) }
func (z *ZeroCrossInterval) Load() uint32    { return z.us.Load() }

// PowerRate is the last commanded power rate published by the zero-cross
// ISR for the publisher to read without blocking the ISR (spec.md §4.1
// step 3: "publish status.power").
type PowerRate struct {
	pct atomic.Uint32
}

func (p *PowerRate) Store(pct uint8) { p.pct.Store(uint32(pct)) }
func (p *PowerRate) Load() uint8     { return uint8(p.pct.Load()) }
