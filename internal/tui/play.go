package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wbdrift/internal/generator"
)

const (
	minPlayWidth  = 8
	minPlayHeight = 3
	// Title, hint, stats, and the two border rows.
	playChromeRows = 5
)

var fadeColors = []string{"#F0F0F0", "#D0D0D0", "#B0B0B0", "#8C8C8C", "#6E6E6E", "#4A4A4A"}

var spinFrames = []string{"|", "/", "-", "\\"}

// playArea returns the inner size of the play box.
func (m *Model) playArea() (width, height int) {
	width = maxInt(minPlayWidth, m.width-2)
	height = maxInt(minPlayHeight, m.height-playChromeRows)
	return width, height
}

func (m *Model) viewPlay() string {
	width, height := m.playArea()
	x, y := m.engine.Position()
	glyph, dy := renderTarget(m.engine.Target(), m.engine.Exiting(), m.animFrame)
	field := renderField(glyph, int(math.Round(x)), int(math.Round(y))-dy, width, height)
	box := boxStyle.Width(width).Render(field)

	lines := []string{
		titleStyle.Render("wbdrift") + "  " + footerStyle.Render("esc end · ctrl+o hint · ctrl+s skip"),
		box,
		m.renderHint(),
		m.renderStats(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHint() string {
	text, ok := m.engine.Hint()
	switch {
	case !ok:
		return footerStyle.Render("Character mode: no code hints")
	case m.engine.HintOn():
		return mappedStyle.Render("Code: " + text)
	default:
		return footerStyle.Render("ctrl+o shows the code")
	}
}

func (m *Model) renderStats() string {
	segments := []string{
		fmt.Sprintf("Speed %d chars/min", m.speed),
		fmt.Sprintf("Accuracy %d%%", m.accuracy),
		fmt.Sprintf("Correct %d/%d", m.engine.Correct(), m.shown),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// renderTarget returns the styled glyph for the target at the given frame of
// its exit animation, and how many rows the glyph has floated up.
func renderTarget(target string, anim generator.Animation, frame int) (string, int) {
	if target == "" {
		return "", 0
	}
	if anim == "" {
		return targetStyle.Render(target), 0
	}
	progress := float64(frame) / float64(animationFrames)
	switch anim {
	case generator.FadeOut:
		idx := int(progress * float64(len(fadeColors)))
		if idx >= len(fadeColors) {
			idx = len(fadeColors) - 1
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(fadeColors[idx])).Render(target), 0
	case generator.Shrink:
		switch {
		case progress < 0.4:
			return targetStyle.Render(target), 0
		case progress < 0.8:
			return pendingStyle.Render("·"), 0
		default:
			return "", 0
		}
	case generator.RotateOut:
		if frame%2 == 0 {
			return pendingStyle.Render(target), 0
		}
		return pendingStyle.Render(spinFrames[(frame/2)%len(spinFrames)]), 0
	case generator.FloatUp:
		return pendingStyle.Render(target), frame / 2
	}
	return targetStyle.Render(target), 0
}

// renderField draws a width x height area with glyph at column x, row y.
// Coordinates are clamped to the area.
func renderField(glyph string, x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	blank := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}
	if glyph == "" {
		return strings.Join(lines, "\n")
	}
	glyphWidth := lipgloss.Width(glyph)
	x = clampInt(x, 0, maxInt(0, width-glyphWidth))
	y = clampInt(y, 0, height-1)
	right := width - x - glyphWidth
	if right < 0 {
		right = 0
	}
	lines[y] = strings.Repeat(" ", x) + glyph + strings.Repeat(" ", right)
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
