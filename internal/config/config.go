package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/motion"
	"github.com/san-kum/wirespool/internal/profile"
)

const (
	DefaultWireThickness = 1.0
	DefaultInnerRadius   = 50.0
	DefaultProfile       = "trapezoid"
	DefaultTopic         = "wirespool/phase"
	DefaultClientID      = "wirespool"
)

type Config struct {
	WireThickness float64         `yaml:"wire_thickness"`
	InnerRadius   float64         `yaml:"inner_radius"`
	MaxWireLength float64         `yaml:"max_wire_length"`
	Profile       string          `yaml:"profile"`
	Motion        profile.Params  `yaml:"motion"`
	StepInterval  string          `yaml:"step_interval,omitempty"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// TelemetryConfig points phase events at an MQTT broker. An empty Broker
// disables publishing.
type TelemetryConfig struct {
	Broker   string `yaml:"broker,omitempty"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

func DefaultConfig() *Config {
	return &Config{
		WireThickness: DefaultWireThickness,
		InnerRadius:   DefaultInnerRadius,
		MaxWireLength: motion.DefaultMaxWireLength,
		Profile:       DefaultProfile,
		Motion:        profile.DefaultParams(),
		Telemetry: TelemetryConfig{
			Topic:    DefaultTopic,
			ClientID: DefaultClientID,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StepDuration parses StepInterval. An empty interval means unpaced.
func (c *Config) StepDuration() (time.Duration, error) {
	if c.StepInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.StepInterval)
	if err != nil {
		return 0, fmt.Errorf("step_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("step_interval: negative duration %s", d)
	}
	return d, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !positive(c.WireThickness) {
		errs = append(errs, fmt.Errorf("wire_thickness: must be positive, got %g", c.WireThickness))
	}
	if !positive(c.InnerRadius) {
		errs = append(errs, fmt.Errorf("inner_radius: must be positive, got %g", c.InnerRadius))
	}
	if !positive(c.MaxWireLength) {
		errs = append(errs, fmt.Errorf("max_wire_length: must be positive, got %g", c.MaxWireLength))
	}
	if _, err := motion.ParseProfileType(c.Profile); err != nil {
		errs = append(errs, fmt.Errorf("profile: %w", err))
	}
	if !positive(c.Motion.AccelerationTime) {
		errs = append(errs, fmt.Errorf("motion.acceleration_time: must be positive, got %g", c.Motion.AccelerationTime))
	}
	if !positive(c.Motion.DecelerationTime) {
		errs = append(errs, fmt.Errorf("motion.deceleration_time: must be positive, got %g", c.Motion.DecelerationTime))
	}
	if v := c.Motion.ConstantVelocity; !(v >= motion.MinVelocity && v <= motion.MaxVelocity) {
		errs = append(errs, fmt.Errorf("motion.constant_velocity: must be within [%g, %g], got %g",
			motion.MinVelocity, motion.MaxVelocity, v))
	}
	if _, err := c.StepDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Telemetry.Broker != "" && c.Telemetry.Topic == "" {
		errs = append(errs, errors.New("telemetry.topic: required when a broker is set"))
	}
	return errors.Join(errs...)
}

// Apply pushes the motion settings into ctrl and stops at the first
// rejected one. Wire thickness is fixed at construction and is not applied.
func (c *Config) Apply(ctrl *motion.Controller) error {
	pt, err := motion.ParseProfileType(c.Profile)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	steps := []struct {
		field string
		set   func() motion.ErrorCode
	}{
		{"inner_radius", func() motion.ErrorCode { return ctrl.SetInnerRadius(c.InnerRadius) }},
		{"max_wire_length", func() motion.ErrorCode { return ctrl.SetMaxWireLength(c.MaxWireLength) }},
		{"motion.acceleration_time", func() motion.ErrorCode { return ctrl.SetAccelerationTime(c.Motion.AccelerationTime) }},
		{"motion.deceleration_time", func() motion.ErrorCode { return ctrl.SetDecelerationTime(c.Motion.DecelerationTime) }},
		{"motion.constant_velocity", func() motion.ErrorCode { return ctrl.SetConstantVelocity(c.Motion.ConstantVelocity) }},
		{"profile", func() motion.ErrorCode { return ctrl.SetVelocityProfile(pt) }},
	}
	for _, s := range steps {
		if err := s.set().Err(); err != nil {
			return fmt.Errorf("%s: %w", s.field, err)
		}
	}
	return nil
}

// NewController builds a controller for act from the config. Extra options
// are applied after the configured step interval.
func (c *Config) NewController(act actuator.Actuator, opts ...motion.Option) (*motion.Controller, error) {
	interval, err := c.StepDuration()
	if err != nil {
		return nil, err
	}

	all := append([]motion.Option{motion.WithStepInterval(interval)}, opts...)
	ctrl, code := motion.New(c.WireThickness, c.InnerRadius, act, all...)
	if err := code.Err(); err != nil {
		return nil, err
	}
	if err := c.Apply(ctrl); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
