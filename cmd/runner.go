package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/repositories"
	"github.com/desertthunder/inbody/internal/services"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
	"github.com/desertthunder/inbody/internal/ui"
)

// Session is what the commands need from the credential manager. [session.Manager] implements it.
type Session interface {
	ui.Session
	Initialize(ctx context.Context) error
	Expiry() time.Time
	Close(ctx context.Context) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The Google session and the record book are wired on first use, so `setup` works before a
// config file exists.
type Runner struct {
	configPath string
	config     *shared.Config
	session    Session
	book       *records.Book
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
	closers    []func() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    Session
	Book       *records.Book
	Logger     *log.Logger
	Output     io.Writer
	Clock      func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Runner{
		configPath: opts.ConfigPath,
		config:     opts.Config,
		session:    opts.Session,
		book:       opts.Book,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Clock,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, recordsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by everything wired after the call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// configure applies the global flags.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet("config") || r.configPath == "" {
		r.configPath = cmd.String("config")
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// before wires the session before any command that talks to Google.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return ctx, r.ready(ctx)
}

// ready loads the config, opens the session database and restores the Google session.
func (r *Runner) ready(ctx context.Context) error {
	if r.session != nil && r.book != nil {
		return nil
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrMissingConfig, err)
		}
		r.config = config
	}
	if err := r.config.Validate(); err != nil {
		return err
	}
	buffer, err := r.config.Session.Buffer()
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInitialization, err)
	}
	r.closers = append(r.closers, db.Close)
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInitialization, err)
	}

	repo := repositories.NewSessionRepository(db)

	identity := services.NewGoogleIdentity(services.GoogleOptions{
		ClientID:     r.config.Google.ClientID,
		ClientSecret: r.config.Google.ClientSecret,
		RedirectURI:  r.config.Google.RedirectURI,
		ListenAddr:   r.config.Server.Addr(),
		Store:        repo,
		Logger:       shared.WithLogger(r.logger, "component", "google"),
	})

	sheets := services.NewSheetsClient(services.SheetsOptions{
		SpreadsheetID:     r.config.Sheets.SpreadsheetID,
		RequestsPerMinute: r.config.Sheets.RequestsPerMinute,
		Logger:            shared.WithLogger(r.logger, "component", "sheets"),
	})

	manager := session.NewManager(session.Options{
		Provider: identity,
		Store:    repo,
		Sink:     sheets,
		Logger:   shared.WithLogger(r.logger, "component", "session"),
		Buffer:   buffer,
	})
	if err := manager.Initialize(ctx); err != nil {
		return err
	}

	r.session = manager
	r.book = records.NewBook(records.NewAdapter(manager, sheets, r.config.Sheets.Range, shared.WithLogger(r.logger, "component", "records")))
	return nil
}

// Close waits for background revocations, then releases the database.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.session != nil {
		errs = append(errs, r.session.Close(ctx))
	}
	for _, closeFn := range slices.Backward(r.closers) {
		errs = append(errs, closeFn())
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// userMessage explains the errors a user can fix themselves.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		return fmt.Sprintf("configuration incomplete (%v); run `inbody setup` and fill in config.toml", err)
	case errors.Is(err, shared.ErrInvalidConfig):
		return fmt.Sprintf("configuration invalid: %v", err)
	case errors.Is(err, shared.ErrInitialization):
		return fmt.Sprintf("could not start: %v", err)
	case errors.Is(err, shared.ErrTimeout):
		return fmt.Sprintf("gave up waiting for Google: %v", err)
	case errors.Is(err, shared.ErrAuthRequired):
		return "not signed in or the session expired; run `inbody auth login`"
	case errors.Is(err, shared.ErrAuthFailed):
		return fmt.Sprintf("sign-in failed: %v", err)
	case errors.Is(err, shared.ErrRemoteStore):
		return fmt.Sprintf("could not reach the spreadsheet: %v", err)
	default:
		return fmt.Sprintf("application error: %v", err)
	}
}
