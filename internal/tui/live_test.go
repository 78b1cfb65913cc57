package tui

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/plant"
	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/sim"
)

type recorder struct{ samples []sim.Sample }

func (r *recorder) OnStep(s sim.Sample) { r.samples = append(r.samples, s) }

func newSession(t *testing.T) (Model, *plant.Rig, *heading.Controller, *recorder) {
	t.Helper()
	integ, _ := integrators.ByName("euler")
	cfg := plant.DefaultConfig()
	cfg.InitialHeading = 0.3
	rig, err := plant.NewRig(cfg, integ)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := heading.New(heading.DefaultConfig(), rig, rig, nil)
	in := robot.NewLatchedInput()
	r := robot.New(ctrl, rig, in, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := &recorder{}
	return New(r, rig, in, 0.02, rec), rig, ctrl, rec
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tick(m Model) Model {
	next, _ := m.Update(tickMsg{})
	return next.(Model)
}

func TestStickKeys(t *testing.T) {
	m, _, ctrl, _ := newSession(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, runes("l"))
	m = tick(m)
	if got := ctrl.ManualIntensity(); got < 0.199 || got > 0.201 {
		t.Errorf("expected stick at 0.2, got %f", got)
	}

	m = press(m, runes("h"))
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = tick(m)
	if got := ctrl.ManualIntensity(); got > -0.099 || got < -0.101 {
		t.Errorf("expected stick at -0.1, got %f", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(m)
	if ctrl.ManualIntensity() != 0 {
		t.Errorf("space should centre the stick, got %f", ctrl.ManualIntensity())
	}
}

func TestButtonKeys(t *testing.T) {
	m, _, ctrl, rec := newSession(t)

	m = press(m, runes("a"))
	m = tick(m)
	if v, ok := ctrl.TargetHeading(); !ok || v != 0 {
		t.Fatalf("a should home to 0, got %f/%v", v, ok)
	}

	m = press(m, runes("b"))
	m = tick(m)
	if ctrl.Mode() != heading.ModeManual {
		t.Error("b should cancel the seek")
	}

	m = press(m, runes("7"))
	m = tick(m)
	if v, ok := ctrl.TargetHeading(); !ok || v != 0.7 {
		t.Errorf("7 should target 0.7, got %f/%v", v, ok)
	}
	if len(rec.samples) != 3 || rec.samples[2].Mode != "seeking" {
		t.Errorf("observer missed samples: %+v", rec.samples)
	}
	if !strings.Contains(m.View(), "seeking") {
		t.Error("view should show the seeking mode")
	}
}

func TestPauseStopsTheLoop(t *testing.T) {
	m, _, _, rec := newSession(t)

	m = press(m, runes("p"))
	m = tick(m)
	m = tick(m)
	if len(rec.samples) != 0 || m.t != 0 {
		t.Error("paused session should not tick")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view should show paused")
	}

	m = press(m, runes("p"))
	m = tick(m)
	if len(rec.samples) != 1 {
		t.Errorf("expected 1 sample after resume, got %d", len(rec.samples))
	}
}

func TestFaultShown(t *testing.T) {
	m, rig, _, _ := newSession(t)
	rig.InjectReadFault(errors.New("encoder unplugged"))

	m = tick(m)
	if m.Faults() != 1 {
		t.Errorf("expected 1 fault, got %d", m.Faults())
	}
	if rig.Duty() != 0 {
		t.Errorf("expected fail-safe duty, got %f", rig.Duty())
	}
	if !strings.Contains(m.View(), "encoder unplugged") {
		t.Error("view should show the fault")
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newSession(t)
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected QuitMsg", msg)
		}
	}
}

func TestSparkline(t *testing.T) {
	got := sparkline([]float64{0, 0.5, 0.999, 2}, 3, 0, 1)
	if got != "▄▇█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if sparkline(nil, 10, 0, 1) != "" {
		t.Error("empty data should render nothing")
	}
}
