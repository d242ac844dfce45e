package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pmwatch/internal/theme"
)

// appName prefixes every screen title.
const appName = "pmwatch"

// chromeLines is the header line plus the status line.
const chromeLines = 2

// Layout is the terminal area of one pmwatch screen.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight is the number of lines between the header and the status
// line, never less than one.
func (l Layout) ContentHeight() int {
	return max(l.Height-chromeLines, 1)
}

// Screen renders a full view: a header with the screen title on the left
// and status on the right, the content, and a status line with hints.
func (l Layout) Screen(title, status, content, hints string) string {
	header := l.fill(theme.HeaderStyle,
		theme.HeaderStyle.Render(appName+" · "+title),
		theme.HeaderStyle.Render(status))
	bar := l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, bar)
}

// fill joins left and right, padding the gap with the style's background
// so the bar spans the full width.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
