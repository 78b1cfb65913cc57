// Package tui drives the bench loop interactively, with the keyboard standing
// in for the operator's gamepad.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/sim"
)

const (
	stickStep   = 0.1
	historySize = 48
	dialWidth   = 40
)

type tickMsg time.Time

// Model is the bubbletea model for one live session.
type Model struct {
	robot  *robot.Robot
	plant  sim.Plant
	input  *robot.LatchedInput
	period float64
	obs    []sim.Observer

	t       float64
	last    sim.Sample
	history []float64
	faults  int
	paused  bool
	err     error
}

// New builds a session that ticks r and advances plant every period seconds
// of wall time. Observers see every sample.
func New(r *robot.Robot, plant sim.Plant, input *robot.LatchedInput, period float64, obs ...sim.Observer) Model {
	return Model{
		robot:   r,
		plant:   plant,
		input:   input,
		period:  period,
		obs:     obs,
		history: make([]float64, 0, historySize),
	}
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	d := time.Duration(m.period * float64(time.Second))
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		if !m.paused {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.input.Nudge(-stickStep)
	case "right", "l":
		m.input.Nudge(stickStep)
	case " ":
		m.input.SetRightX(0)
	case "a":
		m.input.PressA()
	case "b":
		m.input.PressB()
	case "p":
		m.paused = !m.paused
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.input.RequestTarget(float64(key[0]-'0') / 10)
	}
	return m, nil
}

// step runs one control tick followed by one plant advance.
func (m *Model) step() {
	s, err := m.robot.Tick(m.t)
	if err != nil {
		m.faults++
	}
	for _, o := range m.obs {
		o.OnStep(s)
	}
	if err := m.plant.Advance(m.period); err != nil {
		m.err = err
	}

	m.last = s
	if s.Fault == "" {
		m.history = append(m.history, s.Heading)
		if len(m.history) > historySize {
			m.history = m.history[1:]
		}
	}
	m.t += m.period
}

func (m Model) View() string {
	var b strings.Builder
	s := m.last

	status := green.Render("● running")
	if m.paused {
		status = yellow.Render("○ paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s  %s\n\n", cyan.Render("swervesim"), status, dim.Render(fmt.Sprintf("t=%.2fs", m.t))))

	mode := dim.Render(s.Mode)
	if s.Mode == "seeking" {
		mode = magenta.Render(s.Mode)
	}
	target := dimmer.Render("  none")
	if s.HasTarget {
		target = magenta.Render(fmt.Sprintf("%6.3f", s.Target))
	}

	var p strings.Builder
	p.WriteString(dial(s.Heading, s.Target, s.HasTarget, dialWidth) + "\n")
	p.WriteString(dim.Render("0        .25        .5        .75      1") + "\n\n")
	p.WriteString(dim.Render("heading ") + white.Render(fmt.Sprintf("%6.3f", s.Heading)) + "   ")
	p.WriteString(dim.Render("target ") + target + "\n")
	p.WriteString(dim.Render("duty    ") + white.Render(fmt.Sprintf("%+6.3f", s.Duty)) + "   ")
	p.WriteString(dim.Render("mode   ") + mode + "\n")
	p.WriteString(dim.Render("stick   ") + stick(m.input.RightX(), 10))
	b.WriteString(panel.Render(p.String()) + "\n")

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("hdg"), cyan.Render(sparkline(m.history, historySize, 0, 1))))
	}
	if m.faults > 0 {
		b.WriteString(fmt.Sprintf("   %s %s\n", red.Render(fmt.Sprintf("%d faults", m.faults)), dim.Render(s.Fault)))
	}
	if m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   ←→ steer  space centre  a home  b cancel  0-9 target  p pause  q quit") + "\n")
	return b.String()
}

// Faults is the number of ticks that hit the fail-safe path.
func (m Model) Faults() int { return m.faults }

// Err is the plant error that ended the session, if any.
func (m Model) Err() error { return m.err }

// Run blocks until the operator quits and returns the final model.
func Run(m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
