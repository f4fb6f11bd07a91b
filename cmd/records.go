package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/inbody/internal/formatter"
	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/shared"
	"github.com/desertthunder/inbody/internal/ui"
)

// RecordsList re-reads the sheet and prints the most recent measurements, newest first.
func (r *Runner) RecordsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.book.Reload(ctx); err != nil {
		return err
	}

	collection := r.book.Records()
	recent := collection.Recent(cmd.Int("limit"))

	if cmd.Bool("json") {
		return r.writeJSON(recent, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Measurements (%d total)", collection.Len()))
	if len(recent) == 0 {
		return r.writePlain("No measurements yet. Add one with 'inbody records add'.\n")
	}

	headers := []string{"Date"}
	for _, metric := range models.Metrics {
		headers = append(headers, string(metric.Key))
	}

	rows := make([][]string, len(recent))
	for i, m := range recent {
		rows[i] = records.Encode(m)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	return r.writePlain("%s\n", t.Render())
}

// RecordsAdd appends one measurement. Date defaults to today and unset metrics repeat the latest
// measurement, the way the add form is prefilled.
func (r *Runner) RecordsAdd(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("weight") {
		return fmt.Errorf("%w: --weight is required", shared.ErrMissingArgument)
	}

	date := records.DefaultDate(r.now())
	if cmd.IsSet("date") {
		date = strings.TrimSpace(cmd.String("date"))
	}
	if date == "" {
		return fmt.Errorf("%w: --date must not be empty", shared.ErrMissingArgument)
	}
	for _, metric := range models.Metrics {
		name := string(metric.Key)
		if metric.Key == models.MetricAge || !cmd.IsSet(name) {
			continue
		}
		if v := cmd.Float(name); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: --%s must be a finite number", shared.ErrInvalidArgument, name)
		}
	}

	if err := r.book.Reload(ctx); err != nil {
		return err
	}

	var last *models.Measurement
	if m, ok := r.book.Records().Last(); ok {
		last = &m
	}
	entry := records.Prefill(last, date)

	for _, target := range []struct {
		key models.MetricKey
		dst *float64
	}{
		{models.MetricWeight, &entry.Weight},
		{models.MetricBMI, &entry.BMI},
		{models.MetricFat, &entry.Fat},
		{models.MetricMuscle, &entry.Muscle},
		{models.MetricBone, &entry.Bone},
		{models.MetricVisceral, &entry.Visceral},
		{models.MetricCalories, &entry.Calories},
	} {
		if cmd.IsSet(string(target.key)) {
			*target.dst = cmd.Float(string(target.key))
		}
	}
	if cmd.IsSet(string(models.MetricAge)) {
		entry.Age = cmd.Int(string(models.MetricAge))
	}

	result, err := r.book.Add(ctx, entry)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Measurement models.Measurement    `json:"measurement"`
			Result      *records.AppendResult `json:"result"`
		}{entry, result}, false)
	}

	r.writePlain("✓ Saved measurement for %s\n", entry.Date)
	if result != nil && result.UpdatedRange != "" {
		r.writePlain("Sheet range: %s\n", result.UpdatedRange)
	}
	return nil
}

// RecordsChart draws one metric as a colored sparkline with its summary.
func (r *Runner) RecordsChart(ctx context.Context, cmd *cli.Command) error {
	name := strings.ToLower(cmd.String("metric"))
	metric, ok := models.LookupMetric(models.MetricKey(name))
	if !ok {
		return fmt.Errorf("%w: unknown metric %q", shared.ErrInvalidArgument, name)
	}

	if err := r.book.Reload(ctx); err != nil {
		return err
	}

	all := r.book.Records().All()
	if len(all) == 0 {
		return r.writePlain("No measurements yet.\n")
	}

	var summary formatter.Summary
	for _, s := range formatter.Summarize(all) {
		if s.Metric.Key == metric.Key {
			summary = s
		}
	}

	style := ui.MetricStyle(metric)
	series := r.book.Records().Series(metric.Key)

	r.writePlain("%s\n", style.Bold(true).Render(metric.Label))
	r.writePlain("%s\n", style.Render(formatter.Sparkline(series, cmd.Int("width"))))
	r.writePlain("latest %s  change %s  min %s  max %s  (%d measurements)\n",
		formatter.Number(summary.Latest),
		formatter.SignedNumber(summary.Change),
		formatter.Number(summary.Min),
		formatter.Number(summary.Max),
		len(series),
	)
	return nil
}

// RecordsExport re-reads the sheet and writes every measurement in the chosen format.
func (r *Runner) RecordsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.book.Reload(ctx); err != nil {
		return err
	}
	all := r.book.Records().All()

	output := cmd.String("output")
	if output == "-" {
		return formatter.Write(r.output, all, format)
	}

	path, err := formatter.WriteExport(all, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "format", format, "records", len(all))
	return r.writePlain("✓ Exported %d measurements to %s\n", len(all), path)
}
