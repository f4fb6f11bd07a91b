package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/shared"
)

// form is the add-measurement form: one input per sheet column.
type form struct {
	inputs []textinput.Model
	labels []string
	focus  int
}

// newForm builds a form dated now and prefilled from last, when there is one.
func newForm(last *models.Measurement, now time.Time) form {
	values := records.Encode(records.Prefill(last, records.DefaultDate(now)))

	f := form{
		inputs: make([]textinput.Model, records.Columns),
		labels: make([]string, records.Columns),
	}

	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 16
		ti.Width = 12

		if i == 0 {
			f.labels[i] = "Date"
			ti.Placeholder = records.DateLayout
		} else {
			f.labels[i] = models.Metrics[i-1].Label
			ti.Placeholder = models.Metrics[i-1].Placeholder
		}
		if i == 0 || last != nil {
			ti.SetValue(values[i])
		}
		f.inputs[i] = ti
	}

	f.inputs[0].Focus()
	return f
}

// move shifts focus by delta, wrapping at both ends.
func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// measurement coerces the inputs the same way sheet cells are read. Date and weight are required.
func (f form) measurement() (models.Measurement, error) {
	row := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		row[i] = strings.TrimSpace(in.Value())
	}

	if row[0] == "" || row[1] == "" {
		return models.Measurement{}, fmt.Errorf("%w: date and weight are required", shared.ErrMissingArgument)
	}
	return records.Decode(row), nil
}

func (f form) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := f.labels[i]
		if i > 0 {
			label = MetricStyle(models.Metrics[i-1]).Render(label)
		}
		b.WriteString(styles.label.Render(label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}
