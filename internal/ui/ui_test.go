package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/googleapi"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
	tu "github.com/desertthunder/inbody/internal/testing"
)

type fixture struct {
	model    *Model
	manager  *session.Manager
	sheet    *tu.FakeSheetsClient
	provider *tu.FakeProvider
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := log.New(io.Discard)

	provider := tu.NewFakeProvider("ya29.token")
	provider.Profile = &models.Profile{Name: "Ada Lovelace", Email: "ada@example.com"}

	sheet := tu.NewFakeSheetsClient()
	sheet.Rows = append(sheet.Rows,
		[]string{"26/02/03", "66.1", "21.4", "18", "49.8", "2.8", "5", "1490", "36"},
		[]string{"26/02/10", "65.2", "21", "17", "50.1", "2.8", "5", "1500", "35"},
	)

	mgr := session.NewManager(session.Options{
		Provider: provider,
		Store:    tu.NewMemoryStore(),
		Sink:     sheet,
		Logger:   logger,
	})
	if err := mgr.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if signedIn {
		if err := mgr.SignIn(ctx, false); err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
	}

	book := records.NewBook(records.NewAdapter(mgr, sheet, "Sheet1!A:I", logger))
	m := NewModel(ctx, mgr, book)
	m.now = func() time.Time { return time.Date(2026, 2, 17, 8, 30, 0, 0, time.UTC) }

	t.Cleanup(func() { _ = mgr.Close(context.Background()) })
	return &fixture{model: m, manager: mgr, sheet: sheet, provider: provider}
}

// drain runs cmd and feeds every message it produces back into the model, skipping timers.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case recordsLoadedMsg, recordAddedMsg, signedInMsg, signedOutMsg, profileMsg:
		_, next := m.Update(msg)
		drain(m, next)
	case spinner.TickMsg:
	}
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel(t *testing.T) {
	t.Run("Init", func(t *testing.T) {
		t.Run("signed out waits for sign in", func(t *testing.T) {
			f := newFixture(t, false)

			if cmd := f.model.Init(); cmd != nil {
				t.Error("expected no command without a session")
			}
			if f.sheet.Calls != 0 {
				t.Errorf("expected no sheet calls, got %d", f.sheet.Calls)
			}

			view := f.model.View()
			for _, want := range []string{"unauthenticated", "0 measurements", "Press l to sign in"} {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q:\n%s", want, view)
				}
			}
		})

		t.Run("restored session loads the sheet", func(t *testing.T) {
			f := newFixture(t, true)
			drain(f.model, f.model.Init())

			if f.model.busy != "" {
				t.Errorf("expected idle model, busy with %q", f.model.busy)
			}
			rows := f.model.table.Rows()
			if len(rows) != 2 || rows[0][0] != "26/02/10" {
				t.Errorf("expected newest first, got %v", rows)
			}

			view := f.model.View()
			for _, want := range []string{"Ada Lovelace", "2 measurements", "Loaded 2 measurements", "Weight (kg)"} {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q:\n%s", want, view)
				}
			}
		})
	})

	t.Run("sign in then out", func(t *testing.T) {
		f := newFixture(t, false)
		f.model.Init()

		drain(f.model, press(f.model, "l"))

		if diff := cmp.Diff([]session.Prompt{session.Interactive}, f.provider.Prompts()); diff != "" {
			t.Errorf("prompts mismatch (-want +got):\n%s", diff)
		}
		if f.model.book.Records().Len() != 2 {
			t.Errorf("expected records loaded after sign in, got %d", f.model.book.Records().Len())
		}
		if f.model.profile == nil || f.model.profile.Email != "ada@example.com" {
			t.Errorf("expected profile after sign in, got %+v", f.model.profile)
		}

		drain(f.model, press(f.model, "o"))

		if f.manager.State() != session.Unauthenticated {
			t.Errorf("expected Unauthenticated, got %v", f.manager.State())
		}
		if f.model.book.Records().Len() != 0 || len(f.model.table.Rows()) != 0 {
			t.Error("sign out should clear the local records")
		}
		if f.sheet.Token() != "" {
			t.Error("sign out should clear the sheet token")
		}
		if f.model.profile != nil {
			t.Error("sign out should forget the profile")
		}
	})

	t.Run("add form", func(t *testing.T) {
		t.Run("prefills from the latest record", func(t *testing.T) {
			f := newFixture(t, true)
			drain(f.model, f.model.Init())

			press(f.model, "a")
			if f.model.view != FormView {
				t.Fatalf("expected form view, got %v", f.model.view)
			}

			got := make([]string, len(f.model.form.inputs))
			for i, in := range f.model.form.inputs {
				got[i] = in.Value()
			}
			want := []string{"26/02/17", "65.2", "21", "17", "50.1", "2.8", "5", "1500", "35"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("prefill mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("empty sheet leaves metrics blank", func(t *testing.T) {
			f := newFixture(t, true)
			f.sheet.Rows = f.sheet.Rows[:1]
			drain(f.model, f.model.Init())

			press(f.model, "a")
			if f.model.form.inputs[0].Value() != "26/02/17" {
				t.Errorf("expected today's date, got %q", f.model.form.inputs[0].Value())
			}
			if f.model.form.inputs[1].Value() != "" {
				t.Errorf("expected blank weight, got %q", f.model.form.inputs[1].Value())
			}
		})

		t.Run("saves a measurement", func(t *testing.T) {
			f := newFixture(t, true)
			drain(f.model, f.model.Init())

			press(f.model, "a")
			f.model.form.inputs[1].SetValue("64.8")
			drain(f.model, press(f.model, "enter"))

			if f.model.view != DashboardView {
				t.Errorf("expected dashboard after save, got %v", f.model.view)
			}
			last := f.sheet.Rows[len(f.sheet.Rows)-1]
			want := []string{"26/02/17", "64.8", "21", "17", "50.1", "2.8", "5", "1500", "35"}
			if diff := cmp.Diff(want, last); diff != "" {
				t.Errorf("appended row mismatch (-want +got):\n%s", diff)
			}
			if f.model.book.Records().Len() != 3 {
				t.Errorf("expected 3 records, got %d", f.model.book.Records().Len())
			}
			if !strings.Contains(f.model.View(), "Saved measurement for 26/02/17") {
				t.Errorf("expected save status:\n%s", f.model.View())
			}
		})

		t.Run("requires date and weight", func(t *testing.T) {
			f := newFixture(t, true)
			drain(f.model, f.model.Init())
			calls := f.sheet.Calls

			press(f.model, "a")
			f.model.form.inputs[1].SetValue("")
			drain(f.model, press(f.model, "enter"))

			if !errors.Is(f.model.err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", f.model.err)
			}
			if f.sheet.Calls != calls {
				t.Error("invalid form should not reach the sheet")
			}
			if !strings.Contains(f.model.View(), "Date and weight are required.") {
				t.Errorf("expected validation message:\n%s", f.model.View())
			}
		})

		t.Run("tab moves focus and esc cancels", func(t *testing.T) {
			f := newFixture(t, true)
			drain(f.model, f.model.Init())

			press(f.model, "a")
			press(f.model, "tab")
			if f.model.form.focus != 1 || !f.model.form.inputs[1].Focused() {
				t.Errorf("expected focus on weight, got %d", f.model.form.focus)
			}

			press(f.model, "q")
			if f.model.view != FormView {
				t.Error("q inside the form should be typed, not quit")
			}

			press(f.model, "esc")
			if f.model.view != DashboardView {
				t.Errorf("expected dashboard after esc, got %v", f.model.view)
			}
		})
	})

	t.Run("rejected token ends the session", func(t *testing.T) {
		f := newFixture(t, true)
		drain(f.model, f.model.Init())

		f.sheet.Err = &googleapi.Error{Code: http.StatusUnauthorized, Message: "Request had invalid authentication credentials."}
		drain(f.model, press(f.model, "r"))

		if !errors.Is(f.model.err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", f.model.err)
		}
		if f.manager.IsValid() {
			t.Error("session should be invalid after a 401")
		}
		if !strings.Contains(f.model.View(), "Press l to sign in.") {
			t.Errorf("expected sign in hint:\n%s", f.model.View())
		}
	})

	t.Run("keys are ignored while busy", func(t *testing.T) {
		f := newFixture(t, true)
		f.model.busy = "Loading measurements"

		if cmd := press(f.model, "a"); cmd != nil || f.model.view != DashboardView {
			t.Error("expected add to be ignored while busy")
		}
		if !strings.Contains(f.model.View(), "Loading measurements...") {
			t.Errorf("expected busy status:\n%s", f.model.View())
		}
	})

	t.Run("help toggles", func(t *testing.T) {
		f := newFixture(t, false)
		press(f.model, "?")
		if !f.model.help.ShowAll {
			t.Error("expected full help")
		}
	})
}

func TestRenderCharts(t *testing.T) {
	c := &records.Collection{}
	c.Replace([]models.Measurement{
		{Date: "26/02/03", Weight: 66.1, Age: 36},
		{Date: "26/02/10", Weight: 65.2, Age: 35},
	})

	out := renderCharts(c, 10)
	for _, want := range []string{"Weight (kg)", "█▁ 65.2", "Metabolic age"} {
		if !strings.Contains(out, want) {
			t.Errorf("charts missing %q:\n%s", want, out)
		}
	}

	empty := renderCharts(&records.Collection{}, 10)
	if !strings.Contains(empty, " -") {
		t.Errorf("expected placeholder for empty series:\n%s", empty)
	}
}
