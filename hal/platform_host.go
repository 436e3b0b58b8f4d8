//go:build !tinygo

package hal

// The host backend targets a Linux SBC (e.g. Raspberry Pi) running the
// real control kernel against physical GPIO and a USB-serial wireless
// module, using the same periph.io GPIO idiom the example pack's input
// driver uses for its joystick/button pins.

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/rspg/heatjar/x/shmring"
)

func readSysfsInt(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

// HostConfig names the pins and serial device a deployment binds to
// (spec.md §6: "Numbering is deployment-specific").
type HostConfig struct {
	ZeroCrossPin string
	GatePin      string
	PowerPin     string
	BuzzerPin    string
	HeartbeatPin string

	SerialDevice string
	SerialBaud   int
}

// InitHost initializes periph.io's host drivers. Call once at process
// start before resolving any pin by name.
func InitHost() error {
	_, err := host.Init()
	return err
}

// periphZeroCross adapts a periph.io gpio.PinIO to the ZeroCrossPin
// interface, translating WaitForEdge's callback-less polling API into a
// blocking WaitEdge the way gpioirq.Worker's RegisterInput does for its
// channel-fed ISR queue.
type periphZeroCross struct {
	pin    gpio.PinIO
	closed chan struct{}
}

// NewZeroCrossPin opens name as a rising-edge input (spec.md §6 pin B).
func NewZeroCrossPin(name string) (ZeroCrossPin, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("hal: no such pin %q", name)
	}
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, err
	}
	return &periphZeroCross{pin: pin, closed: make(chan struct{})}, nil
}

func (p *periphZeroCross) WaitEdge() (time.Time, error) {
	select {
	case <-p.closed:
		return time.Time{}, errors.New("hal: zero-cross pin closed")
	default:
	}
	if !p.pin.WaitForEdge(-1) {
		return time.Time{}, errors.New("hal: WaitForEdge failed")
	}
	return time.Now(), nil
}

func (p *periphZeroCross) Close() error {
	close(p.closed)
	return nil
}

// periphGate adapts a periph.io gpio.PinIO to GatePin.
type periphGate struct{ pin gpio.PinIO }

// NewGatePin opens name as an active-high output (spec.md §6 pin C).
func NewGatePin(name string) (GatePin, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("hal: no such pin %q", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, err
	}
	return &periphGate{pin: pin}, nil
}

func (p *periphGate) SetHigh() { p.pin.Out(gpio.High) }
func (p *periphGate) SetLow()  { p.pin.Out(gpio.Low) }

// periphPowerSwitch adapts an active-low input pin to PowerSwitch.
type periphPowerSwitch struct{ pin gpio.PinIO }

// NewPowerSwitch opens name as an active-low debounced input (spec.md §6
// pin A); debounce is the out-of-scope collaborator's own concern, not
// re-implemented here.
func NewPowerSwitch(name string) (PowerSwitch, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("hal: no such pin %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &periphPowerSwitch{pin: pin}, nil
}

func (p *periphPowerSwitch) Pressed() bool { return p.pin.Read() == gpio.Low }

// periphHeartbeat adapts an output pin to HeartbeatLED.
type periphHeartbeat struct {
	pin   gpio.PinIO
	level bool
}

// NewHeartbeatLED opens name as an output (spec.md §6).
func NewHeartbeatLED(name string) (HeartbeatLED, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("hal: no such pin %q", name)
	}
	return &periphHeartbeat{pin: pin}, nil
}

func (h *periphHeartbeat) Toggle() {
	h.level = !h.level
	lvl := gpio.Low
	if h.level {
		lvl = gpio.High
	}
	h.pin.Out(lvl)
}

// rxRingSize is the capacity of the serial receive ring; must stay a
// power of two for x/shmring.
const rxRingSize = 256

// serialTransport adapts github.com/tarm/serial to protocol.Transport,
// the way comm.go wraps *serial.Port for the wireless serial link. A
// background goroutine drains the port into an SPSC byte ring (the same
// "one producer, one consumer, edge-coalesced readiness" ring the
// teacher's x/shmring uses for its UART TX path, here repurposed as an
// RX buffer) so ReadLine's deadline is a real poll instead of racing the
// underlying port's own read timeout.
type serialTransport struct {
	port *serial.Port
	rx   *shmring.Ring
	buf  []byte
}

// NewSerialTransport opens the wireless link at 2400 8-N-1 (spec.md §6)
// and starts its background RX pump.
func NewSerialTransport(device string) (*serialTransport, error) {
	cfg := &serial.Config{Name: device, Baud: 2400, ReadTimeout: 50 * time.Millisecond}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	s := &serialTransport{port: port, rx: shmring.New(rxRingSize)}
	go s.pump()
	return s, nil
}

// pump continuously reads from the serial port and pushes bytes into the
// RX ring, blocking on the ring's Writable() edge when the consumer has
// fallen behind.
func (s *serialTransport) pump() {
	var chunk [64]byte
	for {
		n, err := s.port.Read(chunk[:])
		if err != nil {
			return
		}
		for off := 0; off < n; {
			w := s.rx.TryWriteFrom(chunk[off:n])
			if w == 0 {
				<-s.rx.Writable()
				continue
			}
			off += w
		}
	}
}

func (s *serialTransport) WriteLine(line []byte) error {
	_, err := s.port.Write(append(append([]byte(nil), line...), '\n'))
	return err
}

func (s *serialTransport) ReadLine(deadline time.Time) ([]byte, error) {
	var chunk [64]byte
	for {
		n := s.rx.TryReadInto(chunk[:])
		for _, b := range chunk[:n] {
			if b == '\n' {
				line := s.buf
				s.buf = nil
				return line, nil
			}
			s.buf = append(s.buf, b)
		}
		if n > 0 {
			continue
		}
		if time.Now().After(deadline) {
			return nil, errors.New("hal: serial read deadline exceeded")
		}
		select {
		case <-s.rx.Readable():
		case <-time.After(time.Until(deadline)):
		}
	}
}

// sysfsADC reads a 10-bit-scaled thermistor reading from a Linux IIO/hwmon
// sysfs raw-value file, the usual host-side stand-in for a microcontroller's
// on-chip ADC channel (spec.md §6 pin E).
type sysfsADC struct {
	path string
}

// NewSysfsADC opens path (e.g.
// "/sys/bus/iio/devices/iio:device0/in_voltage0_raw") as the thermistor
// ADC channel.
func NewSysfsADC(path string) ADCReader {
	return &sysfsADC{path: path}
}

func (a *sysfsADC) Read() (uint16, error) {
	raw, err := readSysfsInt(a.path)
	if err != nil {
		return 0, err
	}
	if raw < 0 {
		raw = 0
	}
	if raw > 1023 {
		raw = 1023
	}
	return uint16(raw), nil
}
