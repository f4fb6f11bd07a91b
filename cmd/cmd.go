// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/inbody/internal/models"
)

// setupCommand creates the config file and the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the database",
		Action: r.Setup,
	}
}

// authCommand handles the Google session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Manage the Google session",
		Before: r.before,
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with Google, silently when the session can be renewed",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "consent",
						Usage: "Always show Google's consent page",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser sign-in",
						Value: 5 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the session state and the signed-in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the session and revoke the token with Google",
				Action: r.AuthLogout,
			},
		},
	}
}

// recordsCommand handles reading and appending measurements
func recordsCommand(r *Runner) *cli.Command {
	metricFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "date",
			Usage: "Measurement date as YY/MM/DD (default: today)",
		},
	}
	for _, metric := range models.Metrics {
		if metric.Key == models.MetricAge {
			metricFlags = append(metricFlags, &cli.IntFlag{Name: string(metric.Key), Usage: metric.Label})
			continue
		}
		metricFlags = append(metricFlags, &cli.FloatFlag{Name: string(metric.Key), Usage: metric.Label})
	}
	metricFlags = append(metricFlags, &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"})

	return &cli.Command{
		Name:    "records",
		Aliases: []string{"rec"},
		Usage:   "Read and append measurements",
		Before:  r.before,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the most recent measurements, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of measurements to show (0 for all)",
						Value: 14,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RecordsList,
			},
			{
				Name:   "add",
				Usage:  "Append a measurement; unset metrics repeat the latest one",
				Flags:  metricFlags,
				Action: r.RecordsAdd,
			},
			{
				Name:  "chart",
				Usage: "Draw one metric as a sparkline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "metric",
						Aliases: []string{"m"},
						Usage:   "weight, bmi, fat, muscle, bone, visceral, calories or age",
						Value:   string(models.MetricWeight),
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Number of most recent measurements to draw",
						Value: 40,
					},
				},
				Action: r.RecordsChart,
			},
			{
				Name:  "export",
				Usage: "Export every measurement to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout (default: measurements.<ext>)",
					},
				},
				Action: r.RecordsExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the dashboard owns the terminal",
				Value: "./tmp/inbody-tui.log",
			},
		},
		Before: r.beforeTUI,
		Action: r.TUI,
	}
}
