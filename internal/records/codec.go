package records

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/inbody/internal/models"
)

// Columns is the number of cells in a measurement row.
const Columns = 9

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseFloat reads the longest decimal prefix of s, ignoring surrounding whitespace.
// Anything unparseable, infinite or NaN reads as 0.
func parseFloat(s string) float64 {
	prefix := floatPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseInt reads the longest integer prefix of s, so "35.7" reads as 35.
// Prefixes beyond the range of int clamp to math.MaxInt or math.MinInt.
func parseInt(s string) int {
	prefix := intPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}

	n, err := strconv.Atoi(prefix)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return n
}

// formatFloat renders f in its shortest round-trip form: 21 not 21.0.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Decode maps one data row to a measurement. Missing trailing cells read as "".
func Decode(row []string) models.Measurement {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	return models.Measurement{
		Date:     cell(0),
		Weight:   parseFloat(cell(1)),
		BMI:      parseFloat(cell(2)),
		Fat:      parseFloat(cell(3)),
		Muscle:   parseFloat(cell(4)),
		Bone:     parseFloat(cell(5)),
		Visceral: parseFloat(cell(6)),
		Calories: parseFloat(cell(7)),
		Age:      parseInt(cell(8)),
	}
}

// Encode serializes m in sheet column order.
func Encode(m models.Measurement) []string {
	return []string{
		m.Date,
		formatFloat(m.Weight),
		formatFloat(m.BMI),
		formatFloat(m.Fat),
		formatFloat(m.Muscle),
		formatFloat(m.Bone),
		formatFloat(m.Visceral),
		formatFloat(m.Calories),
		strconv.Itoa(m.Age),
	}
}

// DecodeRows skips the header row and decodes the rest.
// The result is never nil.
func DecodeRows(values [][]string) []models.Measurement {
	if len(values) <= 1 {
		return []models.Measurement{}
	}

	out := make([]models.Measurement, 0, len(values)-1)
	for _, row := range values[1:] {
		out = append(out, Decode(row))
	}
	return out
}
