// Package trace exports the velocity and rotation sequences of a single
// planned move for inspection.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/wirespool/internal/motion"
	"github.com/san-kum/wirespool/internal/profile"
)

var ErrNoMove = errors.New("trace: controller has not planned a move")

type Trace struct {
	Start         float64   `json:"start"`
	Target        float64   `json:"target"`
	Retracting    bool      `json:"retracting"`
	Shape         string    `json:"shape"`
	Peak          float64   `json:"peak_velocity"`
	Interval      float64   `json:"sample_interval"`
	StartRotation float64   `json:"start_rotation"`
	Velocity      []float64 `json:"velocity"`
	Rotation      []float64 `json:"rotation"`
}

// FromController captures the last move planned by c.
func FromController(c *motion.Controller) (*Trace, error) {
	mv, ok := c.LastMove()
	if !ok {
		return nil, ErrNoMove
	}
	return FromMove(mv), nil
}

func FromMove(mv motion.Move) *Trace {
	t := &Trace{
		Start:         mv.Start,
		Target:        mv.Target,
		Retracting:    mv.Retracting,
		Interval:      profile.SampleInterval,
		StartRotation: mv.StartRotation,
		Rotation:      append([]float64(nil), mv.Rotations...),
	}
	if mv.Profile != nil {
		t.Shape = mv.Profile.Shape.String()
		t.Peak = mv.Profile.Peak
		t.Velocity = append([]float64(nil), mv.Profile.Samples...)
	}
	return t
}

// Times returns the sample timestamps in seconds.
func (t *Trace) Times() []float64 {
	times := make([]float64, len(t.Velocity))
	for i := range times {
		times[i] = float64(i) * t.Interval
	}
	return times
}

// WriteCSV writes one row per sample with columns t, velocity, rotation.
func (t *Trace) WriteCSV(w io.Writer) error {
	if len(t.Velocity) != len(t.Rotation) {
		return fmt.Errorf("trace: %d velocity samples but %d rotations", len(t.Velocity), len(t.Rotation))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "velocity", "rotation"}); err != nil {
		return err
	}
	for i, v := range t.Velocity {
		row := []string{
			strconv.FormatFloat(float64(i)*t.Interval, 'f', 3, 64),
			strconv.FormatFloat(v, 'f', 6, 64),
			strconv.FormatFloat(t.Rotation[i], 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Trace) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Export writes the trace to path, choosing CSV, JSON or SVG from the
// extension.
func (t *Trace) Export(path string) error {
	var write func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = t.WriteCSV
	case ".json":
		write = t.WriteJSON
	case ".svg":
		write = t.WriteSVG
	default:
		return fmt.Errorf("trace: unsupported export format %q", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
