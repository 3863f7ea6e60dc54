package config

import (
	"sort"

	"github.com/san-kum/wirespool/internal/profile"
)

// Presets are named spool setups. GetPreset returns copies, so callers may
// modify the result.
var Presets = map[string]*Config{
	"bench": {
		WireThickness: 1.0, InnerRadius: 50.0, MaxWireLength: 5.0, Profile: "trapezoid",
		Motion: profile.Params{AccelerationTime: 0.5, DecelerationTime: 0.5, ConstantVelocity: 0.5},
	},
	"fine": {
		WireThickness: 0.2, InnerRadius: 15.0, MaxWireLength: 2.0, Profile: "trapezoid",
		Motion: profile.Params{AccelerationTime: 0.3, DecelerationTime: 0.3, ConstantVelocity: 0.1},
	},
	"heavy": {
		WireThickness: 4.0, InnerRadius: 120.0, MaxWireLength: 30.0, Profile: "trapezoid",
		Motion: profile.Params{AccelerationTime: 1.5, DecelerationTime: 2.0, ConstantVelocity: 0.8},
	},
	"realtime": {
		WireThickness: 1.0, InnerRadius: 50.0, MaxWireLength: 5.0, Profile: "trapezoid",
		Motion:       profile.Params{AccelerationTime: 0.5, DecelerationTime: 0.5, ConstantVelocity: 0.5},
		StepInterval: "1ms",
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Telemetry = DefaultConfig().Telemetry
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
