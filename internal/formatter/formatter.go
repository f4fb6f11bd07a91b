// package formatter renders measurements for export (CSV, Markdown, plain text) and terminal charts
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Extension returns the file extension used for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".csv"
	}
}

// ParseFormat accepts csv, markdown (or md) and text (or txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Headers are the CSV column names, in sheet order.
var Headers = []string{"Date", "Weight", "BMI", "Fat", "Muscle", "Bone", "Visceral", "Calories", "Age"}

// ExportToCSV writes a header row and one row per measurement, with numbers formatted as the sheet stores them.
func ExportToCSV(measurements []models.Measurement) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range measurements {
		if err := writer.Write(records.Encode(m)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a history table followed by a per-metric summary.
func ExportToMarkdown(measurements []models.Measurement) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Measurements\n\n")
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(measurements)))

	if len(measurements) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("## History\n\n")
	buf.WriteString("| Date |")
	for _, metric := range models.Metrics {
		buf.WriteString(" " + metric.Label + " |")
	}
	buf.WriteString("\n|---|")
	buf.WriteString(strings.Repeat("---:|", len(models.Metrics)))
	buf.WriteString("\n")

	for _, m := range measurements {
		buf.WriteString("| " + m.Date + " |")
		for _, metric := range models.Metrics {
			v, _ := m.Value(metric.Key)
			buf.WriteString(" " + Number(v) + " |")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("\n## Summary\n\n")
	buf.WriteString("| Metric | First | Latest | Change | Min | Max |\n")
	buf.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, s := range Summarize(measurements) {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			s.Metric.Label, Number(s.First), Number(s.Latest), SignedNumber(s.Change), Number(s.Min), Number(s.Max)))
	}

	return buf.Bytes(), nil
}

// ExportToText renders one aligned line per measurement.
func ExportToText(measurements []models.Measurement) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Measurements: %d\n\n", len(measurements)))

	for i, m := range measurements {
		buf.WriteString(fmt.Sprintf("%d. %-8s", i+1, m.Date))
		for _, metric := range models.Metrics {
			v, _ := m.Value(metric.Key)
			buf.WriteString(fmt.Sprintf("  %s=%s", metric.Key, Number(v)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Export renders measurements in format f.
func Export(measurements []models.Measurement, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(measurements)
	case FormatMarkdown:
		return ExportToMarkdown(measurements)
	case FormatText:
		return ExportToText(measurements)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// Write renders measurements in format f to w.
func Write(w io.Writer, measurements []models.Measurement, f Format) error {
	data, err := Export(measurements, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExport renders measurements in format f to a file and returns its path.
//
// Defaults to measurements{ext} in the working directory.
func WriteExport(measurements []models.Measurement, f Format, filepath string) (string, error) {
	if filepath == "" {
		filepath = "measurements" + f.Extension()
	}

	data, err := Export(measurements, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate export: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filepath, nil
}

// Number formats v with the fewest digits that read back exactly.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SignedNumber is [Number] with an explicit plus sign for positive values.
func SignedNumber(v float64) string {
	if v > 0 {
		return "+" + Number(v)
	}
	return Number(v)
}
