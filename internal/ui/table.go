package ui

import (
	"github.com/charmbracelet/bubbles/table"

	"github.com/desertthunder/inbody/internal/formatter"
	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
)

// historyLimit is how many of the latest records the table shows.
const historyLimit = 14

func historyColumns() []table.Column {
	cols := []table.Column{{Title: "Date", Width: 10}}
	for _, metric := range models.Metrics {
		cols = append(cols, table.Column{Title: string(metric.Key), Width: 9})
	}
	return cols
}

// historyRows renders the newest records first.
func historyRows(c *records.Collection) []table.Row {
	recent := c.Recent(historyLimit)
	rows := make([]table.Row, len(recent))

	for i, m := range recent {
		row := table.Row{m.Date}
		for _, metric := range models.Metrics {
			v, _ := m.Value(metric.Key)
			row = append(row, formatter.Number(v))
		}
		rows[i] = row
	}
	return rows
}

func newHistoryTable() table.Model {
	return table.New(
		table.WithColumns(historyColumns()),
		table.WithFocused(true),
		table.WithHeight(historyLimit+1),
	)
}
