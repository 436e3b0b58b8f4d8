package control

import (
	"math"
	"sort"
)

// SampleRingSize and HistoryRingSize are the two stages of the temperature
// acquisition filter (spec.md §4.4): a 5-slot median-of-samples stage
// feeding a 10-slot moving-average stage. Together they guarantee at least
// SampleRingSize*HistoryRingSize raw ADC samples per controller update.
const (
	SampleRingSize  = 5
	HistoryRingSize = 10
)

// ThermistorParams are the device-specific constants spec.md §4.4 requires
// implementations to accept as configuration: the B-parameter model
// (B, R0, T0) and the resistor-divider constants (Rv, Vref, VrefInt).
type ThermistorParams struct {
	B       float64 // B-parameter, typically 3000..4100
	R0      float64 // thermistor resistance at T0, kΩ
	T0      float64 // reference temperature, °C
	Rv      float64 // divider resistor, kΩ
	Vref    float64 // supply reference voltage
	VrefInt float64 // ADC internal reference voltage
}

// Sampler implements spec.md §4.4: a fixed-capacity, no-heap median
// filter feeding a moving average, a thermistor resistance/temperature
// conversion, and a leaky-integrator error accumulator.
type Sampler struct {
	Params ThermistorParams

	samples    [SampleRingSize]uint16
	sampleN    int
	sampleNext int

	history    [HistoryRingSize]float64
	historyN   int
	historyNxt int

	CurrentTemperature       float64
	TemperatureErrorIntegral float64
}

// AddSample appends one 10-bit ADC reading and runs the filter pipeline.
// It returns true when a new CurrentTemperature (and error integral) was
// produced this call — i.e. both rings were full — and false otherwise.
// target and ti are needed to advance the leaky integrator (spec.md §4.4
// step 6); ti==0 disables the leak (errorIntegral never moves).
func (s *Sampler) AddSample(adc uint16, target, ti float64) bool {
	s.samples[s.sampleNext] = adc
	s.sampleNext = (s.sampleNext + 1) % SampleRingSize
	if s.sampleN < SampleRingSize {
		s.sampleN++
	}
	if s.sampleN < SampleRingSize {
		return false
	}

	s.sampleN = 0 // each median consumes a fresh block of samples
	median := medianOf(s.samples)
	s.history[s.historyNxt] = median
	s.historyNxt = (s.historyNxt + 1) % HistoryRingSize
	if s.historyN < HistoryRingSize {
		s.historyN++
	}
	if s.historyN < HistoryRingSize {
		return false
	}

	s.historyN = 0 // each update consumes a fresh block of medians
	mean := meanOf(s.history)
	r := s.Params.resistance(mean)
	s.CurrentTemperature = s.Params.temperature(r)
	s.TemperatureErrorIntegral += ((target - s.CurrentTemperature) - s.TemperatureErrorIntegral) * ti
	return true
}

func medianOf(samples [SampleRingSize]uint16) float64 {
	var sorted [SampleRingSize]uint16
	copy(sorted[:], samples[:])
	sort.Slice(sorted[:], func(i, j int) bool { return sorted[i] < sorted[j] })
	return float64(sorted[SampleRingSize/2])
}

func meanOf(history [HistoryRingSize]float64) float64 {
	var sum float64
	for _, v := range history {
		sum += v
	}
	return sum / HistoryRingSize
}

// resistance converts a mean ADC reading to thermistor resistance via the
// divider equation in spec.md §4.4 step 4.
func (p ThermistorParams) resistance(meanADC float64) float64 {
	if meanADC == 0 {
		meanADC = 1e-9
	}
	return (p.Rv*p.Vref*1024/p.VrefInt - p.Rv*meanADC) / meanADC
}

// temperature converts resistance to °C via the B-parameter thermistor
// equation in spec.md §4.4 step 5 / the GLOSSARY.
func (p ThermistorParams) temperature(r float64) float64 {
	if r <= 0 {
		r = 1e-9
	}
	t0k := p.T0 + 273
	return p.B*t0k/(math.Log(r/p.R0)*t0k+p.B) - 273
}

// Plausible reports whether a raw ADC reading is within the range that
// open-circuit and short-circuit thermistor faults fall outside of,
// supporting the optional TEMPERATURE_FEEDBACK_FAILED gate spec.md §8
// describes ("implementations may additionally gate on a plausibility
// window").
func Plausible(adc uint16, lo, hi uint16) bool {
	return adc >= lo && adc <= hi
}

// MaxSafeTemperatureC is the hard ceiling the foreground loop latches
// TEMPERATURE_OVERLIMIT against (spec.md §7 lists the error kind without
// naming a threshold; 120C clears any jar recipe's boiling point with
// margin before the vessel or thermistor insulation is at risk).
const MaxSafeTemperatureC = 120.0

// Overlimit reports whether a converted temperature reading has crossed
// MaxSafeTemperatureC (spec.md §7: TEMPERATURE_OVERLIMIT).
func Overlimit(temperatureC float64) bool {
	return temperatureC > MaxSafeTemperatureC
}
