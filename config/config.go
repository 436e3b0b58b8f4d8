// Package config loads the device-specific constants the control kernel
// needs as configuration (spec.md §4.4: "Implementations MUST accept
// these as configuration"): thermistor B-parameter constants, divider
// constants, default tuning, pin assignments, and wireless serial
// settings, following the same koanf defaults-then-YAML-overlay pattern
// the example pack's multiserver command uses.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"github.com/rspg/heatjar/control"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/timex"
)

// Thermistor mirrors control.ThermistorParams with koanf struct tags so
// it can be populated from YAML.
type Thermistor struct {
	B       float64 `koanf:"b"`
	R0      float64 `koanf:"r0"`
	T0      float64 `koanf:"t0"`
	Rv      float64 `koanf:"rv"`
	Vref    float64 `koanf:"vref"`
	VrefInt float64 `koanf:"vref_int"`
}

// Pins names the deployment's GPIO/ADC assignments (spec.md §6: "Numbering
// is deployment-specific").
type Pins struct {
	ZeroCross  string `koanf:"zero_cross"`
	Gate       string `koanf:"gate"`
	Power      string `koanf:"power"`
	Buzzer     string `koanf:"buzzer"`
	Heartbeat  string `koanf:"heartbeat"`
	Thermistor string `koanf:"thermistor"`
}

// Serial names the wireless link's device path (spec.md §6: 2400 8-N-1).
type Serial struct {
	Device string `koanf:"device"`
	Baud   int    `koanf:"baud"`
}

// Config is the full set of device constants a deployment may override.
type Config struct {
	Thermistor  Thermistor   `koanf:"thermistor"`
	Tuning      types.Tuning `koanf:"tuning"`
	Pins        Pins         `koanf:"pins"`
	Serial      Serial       `koanf:"serial"`
	NVStorePath string       `koanf:"nv_store_path"`
	MainsHz     uint32       `koanf:"mains_hz"`
}

// Default returns the built-in defaults (50 Hz deployment, the tuning
// triple of spec.md §6, and Rv/Vref/Vref_int from spec.md §4.4).
func Default() Config {
	return Config{
		Thermistor: Thermistor{B: 3950, R0: 58.3, T0: 25, Rv: 1.5, Vref: 4.7, VrefInt: 1.1},
		Tuning:     types.DefaultTuning,
		Pins: Pins{
			ZeroCross:  "GPIO17",
			Gate:       "GPIO27",
			Power:      "GPIO22",
			Buzzer:     "GPIO23",
			Heartbeat:  "GPIO24",
			Thermistor: "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
		},
		Serial:      Serial{Device: "/dev/ttyUSB0", Baud: 2400},
		NVStorePath: "nvstore.bin",
		MainsHz:     50,
	}
}

// ZeroCrossHalfPeriodUS returns the nominal zero-cross half-period, in
// microseconds, implied by the configured mains frequency (spec.md §4.1:
// zero crossings occur twice per mains cycle). Used to seed the gate
// timer's interval estimate before the first real edge is observed.
func (c Config) ZeroCrossHalfPeriodUS() uint32 {
	ns := timex.PeriodFromHz(c.MainsHz * 2)
	return uint32(ns / 1000)
}

// Load populates a Config from built-in defaults overlaid with path's YAML
// contents, if present (a missing file is not an error — the device runs
// on defaults, matching the teacher's setupconfig).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	def := Default()
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return Config{}, err
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such") {
			return Config{}, err
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ThermistorParams converts the loaded config into the control package's
// runtime type.
func (t Thermistor) ThermistorParams() control.ThermistorParams {
	return control.ThermistorParams{B: t.B, R0: t.R0, T0: t.T0, Rv: t.Rv, Vref: t.Vref, VrefInt: t.VrefInt}
}
