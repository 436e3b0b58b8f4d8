package types

// Temp is a Q8.8 signed fixed-point temperature in degrees Celsius, the wire
// encoding spec.md §3 assigns to status.temperature (°C × 256).
type Temp int16

// TempFromFloat converts a float64 °C reading to Q8.8, rounding to nearest.
func TempFromFloat(c float64) Temp {
	v := c * 256
	if v >= 0 {
		v += 0.5
	} else {
		v -= 0.5
	}
	return Temp(int32(v))
}

// Float returns the temperature as a float64 °C.
func (t Temp) Float() float64 { return float64(t) / 256 }
