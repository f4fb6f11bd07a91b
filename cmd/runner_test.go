package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/inbody/internal/shared"
	tu "github.com/desertthunder/inbody/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			f := newCLI(t, true)

			if f.runner.session == nil {
				t.Error("expected session to be set")
			}
			if f.runner.book == nil {
				t.Error("expected book to be set")
			}
			if f.runner.output != f.out {
				t.Error("expected output to be set")
			}
			if got := f.runner.now(); !got.Equal(fixedNow) {
				t.Errorf("expected injected clock, got %v", got)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil clock uses time.Now", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if since := time.Since(runner.now()); since < 0 || since > time.Minute {
				t.Errorf("expected wall clock, got %v", runner.now())
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln pads with blank lines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("next"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\nnext\n" {
				t.Errorf("expected padded line, got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		if got := strings.Join(names, ","); got != "setup,auth,records,tui" {
			t.Errorf("unexpected commands: %s", got)
		}
	})

	t.Run("configure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard)})
		app := newApp(runner)
		app.Writer = io.Discard

		if err := app.Run(context.Background(), []string{"inbody", "--verbose", "--config", "custom.toml"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.configPath != "custom.toml" {
			t.Errorf("expected config path from flag, got %q", runner.configPath)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("ready", func(t *testing.T) {
		t.Run("missing config file", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})
			missing := filepath.Join(t.TempDir(), "missing.toml")

			err := newApp(runner).Run(context.Background(), []string{"inbody", "--config", missing, "records", "list"})
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("example config is not enough", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Logger: log.New(io.Discard)})

			if err := runner.ready(context.Background()); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
			if runner.session != nil {
				t.Error("expected no session to be wired")
			}
		})

		t.Run("wires the session from config", func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.toml")
			dbPath := filepath.Join(dir, "data", "inbody.db")
			conf := fmt.Sprintf(`
[google]
client_id = "client-id"
client_secret = "client-secret"

[sheets]
spreadsheet_id = "sheet-123"

[database]
path = %q
`, dbPath)
			if err := os.WriteFile(configPath, []byte(conf), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})
			t.Cleanup(func() { _ = runner.Close(context.Background()) })

			// no refresh token is stored yet, so the silent renewal stops before any request
			err := newApp(runner).Run(context.Background(), []string{"inbody", "--config", configPath, "records", "list"})
			if !errors.Is(err, shared.ErrAuthRequired) {
				t.Errorf("expected ErrAuthRequired, got %v", err)
			}

			if runner.session == nil || runner.book == nil {
				t.Fatal("expected session and book to be wired")
			}
			tu.AssertFileExists(t, dbPath)
			if len(runner.closers) != 1 {
				t.Errorf("expected the database closer, got %d closers", len(runner.closers))
			}

			if err := runner.Close(context.Background()); err != nil {
				t.Errorf("Close failed: %v", err)
			}
			if runner.closers != nil {
				t.Error("expected closers to be released")
			}
		})

		t.Run("invalid renewal buffer", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Google.ClientID = "client-id"
			config.Sheets.SpreadsheetID = "sheet-123"
			config.Session.RenewalBuffer = "soon"
			runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})

			if err := runner.ready(context.Background()); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("userMessage", func(t *testing.T) {
		tests := []struct {
			err  error
			want string
		}{
			{fmt.Errorf("%w: google.client_id is empty", shared.ErrMissingConfig), "run `inbody setup`"},
			{shared.ErrInvalidConfig, "configuration invalid"},
			{fmt.Errorf("%w: database is locked", shared.ErrInitialization), "could not start: "},
			{fmt.Errorf("%w: no response", shared.ErrTimeout), "gave up waiting for Google"},
			{shared.ErrAuthRequired, "run `inbody auth login`"},
			{fmt.Errorf("%w: access_denied", shared.ErrAuthFailed), "sign-in failed: "},
			{fmt.Errorf("%w: read: boom", shared.ErrRemoteStore), "could not reach the spreadsheet"},
			{errors.New("boom"), "application error: boom"},
		}

		for _, tt := range tests {
			if got := userMessage(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("userMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
			}
		}
	})
}
