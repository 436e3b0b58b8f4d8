//go:build tinygo

package hal

import (
	"context"
	"errors"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

// The tinygo backend targets the bare-metal microcontroller build of the
// control kernel, mirroring the teacher's RP2 platform factories: machine
// pins for GPIO, tinygo-uartx for the wireless UART.

// tinygoZeroCross adapts a machine.Pin interrupt into the blocking
// WaitEdge API, translating the hardware ISR callback into a channel
// send/receive the same way the host backend's WaitForEdge polling does,
// so the zero-cross goroutine's code is identical on both targets.
type tinygoZeroCross struct {
	pin    machine.Pin
	edges  chan time.Time
	closed chan struct{}
}

// NewZeroCrossPin configures gpioNum (Pico GP numbering) as a
// rising-edge interrupt input (spec.md §6 pin B).
func NewZeroCrossPin(gpioNum int) (ZeroCrossPin, error) {
	p := machine.Pin(gpioNum)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	zc := &tinygoZeroCross{pin: p, edges: make(chan time.Time, 4), closed: make(chan struct{})}
	err := p.SetInterrupt(machine.PinRising, func(machine.Pin) {
		select {
		case zc.edges <- time.Now():
		default:
			// drop to protect the ISR path, mirroring gpioirq.Worker's
			// non-blocking send with a drop counter.
		}
	})
	if err != nil {
		return nil, err
	}
	return zc, nil
}

func (z *tinygoZeroCross) WaitEdge() (time.Time, error) {
	select {
	case t := <-z.edges:
		return t, nil
	case <-z.closed:
		return time.Time{}, errors.New("hal: zero-cross pin closed")
	}
}

func (z *tinygoZeroCross) Close() error {
	var zero machine.PinChange
	z.pin.SetInterrupt(zero, nil)
	close(z.closed)
	return nil
}

// tinygoGate adapts a machine.Pin output to GatePin.
type tinygoGate struct{ pin machine.Pin }

// NewGatePin configures gpioNum as an active-high output (spec.md §6 pin C).
func NewGatePin(gpioNum int) (GatePin, error) {
	p := machine.Pin(gpioNum)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &tinygoGate{pin: p}, nil
}

func (g *tinygoGate) SetHigh() { g.pin.High() }
func (g *tinygoGate) SetLow()  { g.pin.Low() }

// tinygoPowerSwitch adapts an active-low input to PowerSwitch.
type tinygoPowerSwitch struct{ pin machine.Pin }

// NewPowerSwitch configures gpioNum as an active-low input (spec.md §6 pin A).
func NewPowerSwitch(gpioNum int) (PowerSwitch, error) {
	p := machine.Pin(gpioNum)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &tinygoPowerSwitch{pin: p}, nil
}

func (p *tinygoPowerSwitch) Pressed() bool { return !p.pin.Get() }

// tinygoHeartbeat adapts an output pin to HeartbeatLED.
type tinygoHeartbeat struct {
	pin   machine.Pin
	level bool
}

// NewHeartbeatLED configures gpioNum as an output (spec.md §6).
func NewHeartbeatLED(gpioNum int) (HeartbeatLED, error) {
	p := machine.Pin(gpioNum)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &tinygoHeartbeat{pin: p}, nil
}

func (h *tinygoHeartbeat) Toggle() {
	h.level = !h.level
	h.pin.Set(h.level)
}

// uartxTransport adapts github.com/jangala-dev/tinygo-uartx to
// protocol.Transport, mirroring the teacher's rp2UART wrapper.
type uartxTransport struct {
	u   *uartx.UART
	buf []byte
}

// NewUARTTransport configures u at 2400 8-N-1 (spec.md §6) and returns a
// protocol.Transport.
func NewUARTTransport(u *uartx.UART, cfg uartx.UARTConfig) (*uartxTransport, error) {
	if err := u.Configure(cfg); err != nil {
		return nil, err
	}
	u.SetBaudRate(2400)
	return &uartxTransport{u: u}, nil
}

func (t *uartxTransport) WriteLine(line []byte) error {
	_, err := t.u.Write(append(append([]byte(nil), line...), '\n'))
	return err
}

func (t *uartxTransport) ReadLine(deadline time.Time) ([]byte, error) {
	var chunk [64]byte
	for {
		ctx, cancel := context.WithDeadline(context.Background(), deadline)
		n, err := t.u.RecvSomeContext(ctx, chunk[:])
		cancel()
		if err != nil {
			return nil, err
		}
		for _, b := range chunk[:n] {
			if b == '\n' {
				line := t.buf
				t.buf = nil
				return line, nil
			}
			t.buf = append(t.buf, b)
		}
	}
}

// machineADC reads the thermistor divider via an on-chip ADC channel
// (spec.md §6 pin E), scaled from the machine package's 16-bit reading
// down to the 10-bit range spec.md §4.4 assumes.
type machineADC struct {
	pin machine.ADC
}

// NewMachineADC configures gpioNum as an analog input.
func NewMachineADC(gpioNum int) ADCReader {
	a := machine.ADC{Pin: machine.Pin(gpioNum)}
	a.Configure(machine.ADCConfig{})
	return &machineADC{pin: a}
}

func (a *machineADC) Read() (uint16, error) {
	return a.pin.Get() >> 6, nil // 16-bit machine.ADC reading -> 10-bit
}
