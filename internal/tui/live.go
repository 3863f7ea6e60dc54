// Package tui renders a staged move live in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/motion"
)

const (
	frameInterval = time.Second / 30
	barWidth      = 40
	maxLogLines   = 6
	eventBuffer   = 64
)

type tickMsg time.Time

type phaseMsg motion.PhaseEvent

type doneMsg struct {
	code motion.ErrorCode
	err  error
}

// Model runs one staged move and shows its progress.
type Model struct {
	ctrl   *motion.Controller
	act    actuator.Actuator
	events *motion.ChanObserver
	target float64

	ctx    context.Context
	cancel context.CancelFunc

	// listen scopes the phase listener; it ends with the move, not with a
	// user cancel
	listen     context.Context
	stopListen context.CancelFunc

	state    motion.MotionState
	start    float64
	position float64
	rotation float64
	log      []motion.PhaseEvent
	frame    int
	width    int

	done bool
	code motion.ErrorCode
	err  error
}

// New prepares a model that moves ctrl to target. act must be the actuator
// ctrl drives; it is polled for the live rotation.
func New(ctrl *motion.Controller, act actuator.Actuator, target float64) Model {
	events := motion.NewChanObserver(eventBuffer)
	ctrl.AddObserver(events)
	ctx, cancel := context.WithCancel(context.Background())
	listen, stopListen := context.WithCancel(context.Background())
	pos := ctrl.CurrentPosition()
	return Model{
		ctrl:       ctrl,
		act:        act,
		events:     events,
		target:     target,
		ctx:        ctx,
		cancel:     cancel,
		listen:     listen,
		stopListen: stopListen,
		start:      pos,
		position:   pos,
		rotation:   act.CurrentRotation(),
		width:      80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.runMove(), m.waitPhase(), tick())
}

func (m Model) runMove() tea.Cmd {
	ctrl, ctx, target := m.ctrl, m.ctx, m.target
	return func() tea.Msg {
		code, err := ctrl.Run(ctx, target)
		return doneMsg{code: code, err: err}
	}
}

// waitPhase delivers the next phase event. Once listening has stopped it
// returns an event that is already queued, or nil.
func (m Model) waitPhase() tea.Cmd {
	ctx, ch := m.listen, m.events.C
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return phaseMsg(ev)
		case <-ctx.Done():
			select {
			case ev := <-ch:
				return phaseMsg(ev)
			default:
				return nil
			}
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			m.stopListen()
			m.ctrl.RemoveObserver(m.events)
			return m, tea.Quit
		case "c", "esc", " ":
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case phaseMsg:
		ev := motion.PhaseEvent(msg)
		if !m.done {
			m.state = ev.State
		}
		m.log = append(m.log, ev)
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		if m.done {
			return m, nil
		}
		return m, m.waitPhase()

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		m.rotation = m.act.CurrentRotation()
		if m.ctrl.IsMoving() {
			m.position = m.estimate(m.rotation)
		}
		return m, tick()

	case doneMsg:
		m.done = true
		m.code, m.err = msg.code, msg.err
		m.state = motion.Stopped
		m.position = m.ctrl.CurrentPosition()
		m.rotation = m.act.CurrentRotation()
		m.ctrl.RemoveObserver(m.events)
		m.cancel()
		m.stopListen()
		return m, nil
	}
	return m, nil
}

// estimate converts the live actuator rotation into a wire position using
// the move currently in flight.
func (m Model) estimate(rotation float64) float64 {
	mv, ok := m.ctrl.LastMove()
	if !ok {
		return m.position
	}
	g := m.ctrl.Geometry()
	travelled := g.LengthDelta(math.Abs(rotation-mv.StartRotation), mv.StartRotation)
	if mv.Retracting {
		return mv.Start - travelled
	}
	return mv.Start + travelled
}

func (m Model) progress() float64 {
	total := math.Abs(m.target - m.start)
	if total == 0 {
		return 1
	}
	return math.Min(math.Abs(m.position-m.start)/total, 1)
}

// Result reports how the move ended. Valid once the program has exited.
func (m Model) Result() (motion.ErrorCode, error) {
	return m.code, m.err
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(title.Render("wirespool") + "  ")
	b.WriteString(m.status() + "\n\n")

	row := func(name, val string) {
		b.WriteString(label.Render(fmt.Sprintf("%-10s", name)) + value.Render(val) + "\n")
	}
	row("position", fmt.Sprintf("%.4f m", m.position))
	row("target", fmt.Sprintf("%.4f m", m.target))
	row("rotation", fmt.Sprintf("%.2f°", m.rotation))
	row("state", m.state.String())
	b.WriteString("\n" + progressBar(m.progress(), barWidth) + fmt.Sprintf(" %3.0f%%\n", m.progress()*100))

	if velocity := m.ctrl.LastVelocityProfile(); len(velocity) > 0 && len(m.log) > 0 {
		mark := m.log[len(m.log)-1].Sample
		if m.done {
			mark = -1
		}
		b.WriteString("\n" + label.Render("velocity  ") + sparkline(velocity, barWidth, mark) + "\n")
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		for _, ev := range m.log {
			b.WriteString(label.Render(fmt.Sprintf("%7.3fs  %-17s %.4f m", ev.Time, ev.State, ev.Position)) + "\n")
		}
	}

	b.WriteString("\n" + hint.Render("c cancel move · q quit"))
	return panel.Render(b.String())
}

func (m Model) status() string {
	switch {
	case !m.done:
		return statusMoving.Render(spinner(m.frame) + " moving")
	case m.code != motion.Success:
		return statusFailed.Render("rejected: " + m.code.String())
	case m.err != nil:
		return statusStopped.Render("stopped: " + m.err.Error())
	default:
		return statusStopped.Render("done")
	}
}

// Run shows a staged move of ctrl to target until it finishes and the user
// quits, or the user quits early, which cancels the move.
func Run(ctrl *motion.Controller, act actuator.Actuator, target float64) (motion.ErrorCode, error) {
	final, err := tea.NewProgram(New(ctrl, act, target)).Run()
	if err != nil {
		return motion.Success, err
	}
	m := final.(Model)
	if !m.done {
		return motion.Success, context.Canceled
	}
	return m.Result()
}
