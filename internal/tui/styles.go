package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline scales the most recent width values over [lo, hi].
func sparkline(data []float64, width int, lo, hi float64) string {
	if len(data) > width {
		data = data[len(data)-width:]
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	var sb strings.Builder
	for _, v := range data {
		idx := int((v - lo) / span * float64(len(sparkChars)-1))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

// dial renders a strip of width cells covering headings [0, 1). The heading
// is drawn as ▲ and, when present, the target as ◆.
func dial(heading, target float64, hasTarget bool, width int) string {
	cells := make([]string, width)
	for i := range cells {
		switch {
		case i == 0 || i == width/2:
			cells[i] = dim.Render("┼")
		case i%(width/4) == 0:
			cells[i] = dimmer.Render("┬")
		default:
			cells[i] = dimmer.Render("─")
		}
	}
	if hasTarget {
		cells[cell(target, width)] = magenta.Render("◆")
	}
	cells[cell(heading, width)] = cyan.Render("▲")
	return strings.Join(cells, "")
}

func cell(v float64, width int) int {
	i := int(v * float64(width))
	if i >= width {
		i = width - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// stick renders the right-X axis position on a centred bar.
func stick(x float64, half int) string {
	n := int(x*float64(half) + 0.5*sign(x))
	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if n < 0 {
		left = strings.Repeat(" ", half+n) + strings.Repeat("█", -n)
	} else if n > 0 {
		right = strings.Repeat("█", n) + strings.Repeat(" ", half-n)
	}
	return dimmer.Render("[") + yellow.Render(left) + dim.Render("│") + yellow.Render(right) + dimmer.Render("]")
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
