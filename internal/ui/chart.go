package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/inbody/internal/formatter"
	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
)

// renderCharts draws one colored sparkline per metric with its latest value.
func renderCharts(c *records.Collection, width int) string {
	if width <= 0 {
		width = 30
	}

	var b strings.Builder
	for _, metric := range models.Metrics {
		series := c.Series(metric.Key)
		style := MetricStyle(metric)

		latest := "-"
		if len(series) > 0 {
			latest = formatter.Number(series[len(series)-1])
		}

		b.WriteString(styles.label.Render(metric.Label))
		b.WriteString(style.Render(formatter.Sparkline(series, width)))
		b.WriteString(fmt.Sprintf(" %s\n", style.Bold(true).Render(latest)))
	}
	return b.String()
}
