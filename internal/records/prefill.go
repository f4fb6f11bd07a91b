package records

import (
	"time"

	"github.com/desertthunder/inbody/internal/models"
)

// DateLayout is the YY/MM/DD format the sheet uses for dates.
const DateLayout = "06/01/02"

// DefaultDate formats t as a sheet date.
func DefaultDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Prefill returns a new entry dated date with every metric copied from last.
// With no previous record only the date is set.
func Prefill(last *models.Measurement, date string) models.Measurement {
	if last == nil {
		return models.Measurement{Date: date}
	}
	m := *last
	m.Date = date
	return m
}
