package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/inbody/internal/shared"
	"github.com/desertthunder/inbody/internal/ui"
)

// beforeTUI moves logging to a file, then wires the session with that logger.
func (r *Runner) beforeTUI(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return ctx, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	return r.before(ctx, cmd)
}

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil || r.book == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	model := ui.NewModel(ctx, r.session, r.book)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
