package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/inbody/internal/models"
)

// Dashboard colors, taken from the same palette as the metric charts.
const (
	colorAccent = "#3b82f6"
	colorOK     = "#10b981"
	colorError  = "#ef4444"
	colorNotice = "#f59e0b"
	colorMuted  = "#64748b"
)

var styles = newPalette()

// palette is the dashboard stylesheet.
type palette struct {
	title lipgloss.Style // title is the app name and form heading
	ok    lipgloss.Style // ok marks a signed-in identity
	err   lipgloss.Style
	warn  lipgloss.Style // warn marks any other session state
	help  lipgloss.Style
	label lipgloss.Style // label is a fixed-width column for metric names
	box   lipgloss.Style
}

func newPalette() *palette {
	return &palette{
		title: foreground(colorAccent).Bold(true).MarginBottom(1),
		ok:    foreground(colorOK).Bold(true),
		err:   foreground(colorError).Bold(true),
		warn:  foreground(colorNotice),
		help:  foreground(colorMuted).Italic(true),
		label: foreground(colorMuted).Width(16),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted)).
			Padding(0, 1),
	}
}

func foreground(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// MetricStyle colors text with the chart color of metric.
func MetricStyle(metric models.Metric) lipgloss.Style {
	return foreground(metric.Color)
}
