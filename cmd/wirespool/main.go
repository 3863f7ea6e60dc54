package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/wirespool/internal/config"
	"github.com/san-kum/wirespool/internal/logging"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	// spool overrides, applied only when set on the command line
	thickness    float64
	radius       float64
	maxLength    float64
	accelTime    float64
	decelTime    float64
	velocity     float64
	profileName  string
	stepInterval string
	mqttBroker   string
	mqttTopic    string

	relative    bool
	staged      bool
	movePlot    bool
	profilePlot bool
	exportPath  string
	wrapCount   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "wirespool",
		Short:         "wire spool motion controller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json, logfmt)")
	pf.Float64Var(&thickness, "thickness", config.DefaultWireThickness, "wire thickness (mm)")
	pf.Float64Var(&radius, "radius", config.DefaultInnerRadius, "spool core radius (mm)")
	pf.Float64Var(&maxLength, "max-length", 5.0, "maximum wire extension (m)")
	pf.Float64Var(&accelTime, "accel", 0.5, "acceleration time (s)")
	pf.Float64Var(&decelTime, "decel", 0.5, "deceleration time (s)")
	pf.Float64Var(&velocity, "velocity", 0.5, "cruise velocity (m/s)")
	pf.StringVar(&profileName, "profile", config.DefaultProfile, "velocity profile (trapezoid, s_curve)")
	pf.StringVar(&stepInterval, "step-interval", "", "pace staged moves, e.g. 1ms")
	pf.StringVar(&mqttBroker, "mqtt-broker", "", "publish phase events to this broker, e.g. tcp://localhost:1883")
	pf.StringVar(&mqttTopic, "mqtt-topic", config.DefaultTopic, "topic for phase events")

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "convert between wire length and spool rotation",
	}
	convertCmd.AddCommand(
		&cobra.Command{
			Use:   "length [meters]",
			Short: "rotation needed to pay out a length",
			Args:  cobra.ExactArgs(1),
			RunE:  convertLength,
		},
		&cobra.Command{
			Use:   "rotation [degrees]",
			Short: "length paid out by a rotation",
			Args:  cobra.ExactArgs(1),
			RunE:  convertRotation,
		},
	)

	wrapsCmd := &cobra.Command{
		Use:   "wraps",
		Short: "show the wire length of successive wraps",
		RunE:  showWraps,
	}
	wrapsCmd.Flags().IntVarP(&wrapCount, "count", "n", 10, "number of wraps")

	profileCmd := &cobra.Command{
		Use:   "profile [distance]",
		Short: "generate the velocity profile for a travel distance",
		Args:  cobra.ExactArgs(1),
		RunE:  showProfile,
	}
	profileCmd.Flags().BoolVar(&profilePlot, "plot", true, "plot the profile")

	moveCmd := &cobra.Command{
		Use:   "move [target...]",
		Short: "run one or more moves on a simulated actuator",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMoves,
	}
	moveCmd.Flags().BoolVar(&relative, "relative", false, "targets are relative distances")
	moveCmd.Flags().BoolVar(&staged, "staged", false, "step the actuator and report phases")
	moveCmd.Flags().BoolVar(&movePlot, "plot", false, "plot the last move")
	moveCmd.Flags().StringVar(&exportPath, "export", "", "write the last move to a .csv, .json or .svg file")

	liveCmd := &cobra.Command{
		Use:   "live [target]",
		Short: "run a staged move with a live view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "inspect or write configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "init [path]",
			Short: "write the resolved configuration to a file",
			Args:  cobra.ExactArgs(1),
			RunE:  initConfig,
		},
		&cobra.Command{
			Use:   "show",
			Short: "print the resolved configuration",
			RunE:  showConfig,
		},
	)

	rootCmd.AddCommand(convertCmd, wrapsCmd, profileCmd, moveCmd, liveCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() (*log.Logger, error) {
	return logging.New(os.Stderr, logLevel, logFormat)
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flags set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("thickness") {
		cfg.WireThickness = thickness
	}
	if flags.Changed("radius") {
		cfg.InnerRadius = radius
	}
	if flags.Changed("max-length") {
		cfg.MaxWireLength = maxLength
	}
	if flags.Changed("accel") {
		cfg.Motion.AccelerationTime = accelTime
	}
	if flags.Changed("decel") {
		cfg.Motion.DecelerationTime = decelTime
	}
	if flags.Changed("velocity") {
		cfg.Motion.ConstantVelocity = velocity
	}
	if flags.Changed("profile") {
		cfg.Profile = profileName
	}
	if flags.Changed("step-interval") {
		cfg.StepInterval = stepInterval
	}
	if flags.Changed("mqtt-broker") {
		cfg.Telemetry.Broker = mqttBroker
	}
	if flags.Changed("mqtt-topic") {
		cfg.Telemetry.Topic = mqttTopic
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
