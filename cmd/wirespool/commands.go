package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/config"
	"github.com/san-kum/wirespool/internal/geometry"
	"github.com/san-kum/wirespool/internal/motion"
	"github.com/san-kum/wirespool/internal/profile"
	"github.com/san-kum/wirespool/internal/telemetry"
	"github.com/san-kum/wirespool/internal/trace"
	"github.com/san-kum/wirespool/internal/tui"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	bad     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func parseFloat(s, what string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}

func spool(cmd *cobra.Command) (*geometry.Model, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return geometry.New(cfg.WireThickness, cfg.InnerRadius)
}

func convertLength(cmd *cobra.Command, args []string) error {
	length, err := parseFloat(args[0], "length")
	if err != nil {
		return err
	}
	g, err := spool(cmd)
	if err != nil {
		return err
	}
	rot, err := g.LengthToRotation(length)
	if err != nil {
		return err
	}
	fmt.Printf("%.6g m -> %.4f° (%.3f turns, radius %.2f mm)\n", length, rot, rot/360, g.RadiusAt(rot))
	return nil
}

func convertRotation(cmd *cobra.Command, args []string) error {
	rot, err := parseFloat(args[0], "rotation")
	if err != nil {
		return err
	}
	g, err := spool(cmd)
	if err != nil {
		return err
	}
	length, err := g.RotationToLength(rot)
	if err != nil {
		return err
	}
	fmt.Printf("%.4f° -> %.6f m (radius %.2f mm)\n", rot, length, g.RadiusAt(rot))
	return nil
}

func showWraps(cmd *cobra.Command, args []string) error {
	g, err := spool(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WRAP\tRADIUS (mm)\tLENGTH (m)\tTOTAL (m)")
	total := 0.0
	for n := 1; n <= wrapCount; n++ {
		length, err := g.WrapLength(n)
		if err != nil {
			return err
		}
		total += length
		fmt.Fprintf(w, "%d\t%.2f\t%.6f\t%.6f\n", n, g.RadiusAt(float64(n-1)*360), length, total)
	}
	return w.Flush()
}

func showProfile(cmd *cobra.Command, args []string) error {
	distance, err := parseFloat(args[0], "distance")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pt, err := motion.ParseProfileType(cfg.Profile)
	if err != nil {
		return err
	}
	gen, err := profile.NewRegistry().Get(pt.String())
	if err != nil {
		return err
	}
	p, err := gen.Generate(distance, cfg.Motion)
	if err != nil {
		return err
	}

	fmt.Println(heading.Render(fmt.Sprintf("%s profile for %.4f m", p.Shape, distance)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "peak velocity\t%.4f m/s\n", p.Peak)
	fmt.Fprintf(w, "samples\t%d (accel %d, cruise %d, decel %d)\n", len(p.Samples), p.AccelSteps, p.CruiseSteps, p.DecelSteps)
	fmt.Fprintf(w, "duration\t%.3f s\n", p.Duration())
	fmt.Fprintf(w, "integrated distance\t%.6f m\n", p.Distance())
	if err := w.Flush(); err != nil {
		return err
	}

	if profilePlot {
		fmt.Println()
		fmt.Println(trace.Plot(p.Samples, "velocity (m/s)", 0, 0))
	}
	return nil
}

// newController builds a controller on a simulated actuator, wiring the
// logger and MQTT telemetry when configured. The returned cleanup must be
// called when done.
func newController(cfg *config.Config) (*motion.Controller, *actuator.Sim, func(), error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []motion.Option{motion.WithLogger(logger)}
	cleanup := func() {}
	if cfg.Telemetry.Broker != "" {
		pub, err := telemetry.Connect(cfg.Telemetry.Broker, cfg.Telemetry.ClientID, cfg.Telemetry.Topic, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("publishing phase events", "broker", cfg.Telemetry.Broker, "topic", cfg.Telemetry.Topic)
		opts = append(opts, motion.WithObserver(pub))
		cleanup = pub.Close
	}

	sim := actuator.NewSim()
	ctrl, err := cfg.NewController(sim, opts...)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return ctrl, sim, cleanup, nil
}

func runMoves(cmd *cobra.Command, args []string) error {
	targets := make([]float64, len(args))
	for i, a := range args {
		v, err := parseFloat(a, "target")
		if err != nil {
			return err
		}
		targets[i] = v
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, sim, cleanup, err := newController(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if staged {
		ctrl.AddObserver(motion.ObserverFunc(func(ev motion.PhaseEvent) {
			fmt.Println(dim.Render(fmt.Sprintf("  %8.3fs  %-17s %.4f m", ev.Time, ev.State, ev.Position)))
		}))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET (m)\tRESULT\tPOSITION (m)\tROTATION (°)\tSAMPLES")
	moved := false
	for _, t := range targets {
		start := ctrl.CurrentPosition()
		target := t
		if relative {
			target = start + t
		}

		var code motion.ErrorCode
		var runErr error
		if staged {
			code, runErr = ctrl.Run(ctx, target)
		} else {
			code = ctrl.MoveTo(target)
		}

		result := code.String()
		if code != motion.Success {
			result = bad.Render(result)
		} else if runErr != nil {
			result = bad.Render(runErr.Error())
		}
		samples := 0
		if code == motion.Success {
			samples = plannedSamples(ctrl, start, target)
		}
		if samples > 0 {
			moved = true
		}
		fmt.Fprintf(w, "%.4f\t%s\t%.4f\t%.2f\t%d\n", target, result, ctrl.CurrentPosition(), sim.CurrentRotation(), samples)

		if errors.Is(runErr, context.Canceled) {
			break
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !moved || (!movePlot && exportPath == "") {
		return nil
	}
	tr, err := trace.FromController(ctrl)
	if err != nil {
		return err
	}
	if movePlot {
		fmt.Println()
		fmt.Println(tr.PlotVelocity(0, 0))
		fmt.Println()
		fmt.Println(tr.PlotRotation(0, 0))
	}
	if exportPath != "" {
		if err := tr.Export(exportPath); err != nil {
			return err
		}
		fmt.Printf("trace written to %s\n", exportPath)
	}
	return nil
}

// plannedSamples is the length of the move ctrl planned from start to
// target, or 0 when that request needed no motion and LastMove still holds
// an earlier move.
func plannedSamples(ctrl *motion.Controller, start, target float64) int {
	mv, ok := ctrl.LastMove()
	if !ok || mv.Start != start || mv.Target != target {
		return 0
	}
	return len(mv.Rotations)
}

func runLive(cmd *cobra.Command, args []string) error {
	target, err := parseFloat(args[0], "target")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.StepInterval == "" {
		// unpaced moves finish before the first frame
		cfg.StepInterval = "1ms"
	}

	ctrl, sim, cleanup, err := newController(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	code, err := tui.Run(ctrl, sim, target)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return code.Err()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTHICKNESS (mm)\tRADIUS (mm)\tMAX (m)\tACCEL/DECEL (s)\tVELOCITY (m/s)")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%.1f\t%.2f/%.2f\t%.2f\n", name, p.WireThickness, p.InnerRadius,
			p.MaxWireLength, p.Motion.AccelerationTime, p.Motion.DecelerationTime, p.Motion.ConstantVelocity)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("config written to %s\n", args[0])
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
