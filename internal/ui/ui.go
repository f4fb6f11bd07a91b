package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
)

// chartChrome is the width taken by the history table, both box borders, and the chart labels.
const chartChrome = 132

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	FormView
)

// Session is the part of [session.Manager] the TUI drives.
type Session interface {
	State() session.State
	IsValid() bool
	SignIn(ctx context.Context, interactive bool) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (*models.Profile, error)
}

// Records is the part of [records.Book] the TUI drives.
type Records interface {
	Reload(ctx context.Context) error
	Add(ctx context.Context, m models.Measurement) (*records.AppendResult, error)
	Records() *records.Collection
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	session Session
	book    Records
	now     func() time.Time

	width   int
	height  int
	table   table.Model
	form    form
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	busy    string
	status  string
	profile *models.Profile
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, s Session, book Records) *Model {
	return &Model{
		ctx:     ctx,
		view:    DashboardView,
		session: s,
		book:    book,
		now:     time.Now,
		table:   newHistoryTable(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the sheet when a session was restored; otherwise it waits for the user to sign in.
func (m *Model) Init() tea.Cmd {
	if !m.session.IsValid() {
		m.status = "Signed out. Press l to sign in with Google."
		return nil
	}
	m.busy = "Loading measurements"
	return tea.Batch(m.spinner.Tick, m.reload(), m.fetchProfile())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.view == FormView {
			return m.handleFormKeys(msg)
		}
		return m.handleDashboardKeys(msg)

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case recordsLoadedMsg:
		m.busy = ""
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Loaded %d measurements", m.book.Records().Len())
		}
		m.refreshTable()
		return m, nil

	case recordAddedMsg:
		m.busy = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view = DashboardView
		m.status = fmt.Sprintf("Saved measurement for %s", msg.measurement.Date)
		if msg.result != nil && msg.result.UpdatedRange != "" {
			m.status += " (" + msg.result.UpdatedRange + ")"
		}
		m.refreshTable()
		return m, nil

	case signedInMsg:
		if msg.err != nil {
			m.busy = ""
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.busy = "Loading measurements"
		return m, tea.Batch(m.reload(), m.fetchProfile())

	case signedOutMsg:
		m.busy = ""
		m.err = msg.err
		m.profile = nil
		m.book.Records().Clear()
		m.refreshTable()
		m.status = "Signed out. Press l to sign in with Google."
		return m, nil

	case profileMsg:
		if msg.err == nil {
			m.profile = msg.profile
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case FormView:
		b.WriteString(styles.title.Render("New measurement"))
		b.WriteString("\n")
		b.WriteString(m.form.view())
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			styles.box.Render(m.table.View()),
			styles.box.Render(renderCharts(m.book.Records(), m.chartWidth())),
		))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.view == FormView {
		b.WriteString(m.help.View(formKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case m.busy != "":
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.busy = "Loading measurements"
		return m, tea.Batch(m.spinner.Tick, m.reload())
	case key.Matches(msg, m.keys.login):
		m.busy = "Signing in"
		return m, tea.Batch(m.spinner.Tick, m.signIn())
	case key.Matches(msg, m.keys.logout):
		m.busy = "Signing out"
		return m, tea.Batch(m.spinner.Tick, m.signOut())
	case key.Matches(msg, m.keys.add):
		var last *models.Measurement
		if r, ok := m.book.Records().Last(); ok {
			last = &r
		}
		m.form = newForm(last, m.now())
		m.view = FormView
		m.err = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case m.busy != "":
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.view = DashboardView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.form.move(-1)
	case key.Matches(msg, m.keys.submit):
		entry, err := m.form.measurement()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.busy = "Saving"
		return m, tea.Batch(m.spinner.Tick, m.add(entry))
	}

	return m, m.form.update(msg)
}

func (m *Model) reload() tea.Cmd {
	return func() tea.Msg {
		return recordsLoadedMsg{err: m.book.Reload(m.ctx)}
	}
}

func (m *Model) add(entry models.Measurement) tea.Cmd {
	return func() tea.Msg {
		result, err := m.book.Add(m.ctx, entry)
		return recordAddedMsg{measurement: entry, result: result, err: err}
	}
}

func (m *Model) signIn() tea.Cmd {
	return func() tea.Msg {
		return signedInMsg{err: m.session.SignIn(m.ctx, false)}
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: m.session.SignOut(m.ctx)}
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.session.Profile(m.ctx)
		return profileMsg{profile: profile, err: err}
	}
}

func (m *Model) refreshTable() {
	m.table.SetRows(historyRows(m.book.Records()))
}

func (m *Model) chartWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(m.width-chartChrome, 10)
}

func (m *Model) renderHeader() string {
	title := styles.title.Render("inbody")

	state := m.session.State()
	var who string
	switch {
	case state == session.Valid && m.profile != nil:
		who = styles.ok.Render(fmt.Sprintf("● %s <%s>", m.profile.Name, m.profile.Email))
	case state == session.Valid:
		who = styles.ok.Render("● signed in")
	default:
		who = styles.warn.Render("○ " + state.String())
	}

	count := styles.help.Render(fmt.Sprintf("%d measurements", m.book.Records().Len()))
	return fmt.Sprintf("%s  %s  %s", title, who, count)
}

func (m *Model) renderStatus() string {
	switch {
	case m.busy != "":
		return fmt.Sprintf("%s %s...", m.spinner.View(), m.busy)
	case m.err != nil:
		return styles.err.Render(describeError(m.err))
	default:
		return styles.help.Render(m.status)
	}
}

// describeError turns the errors a user can act on into instructions.
func describeError(err error) string {
	switch {
	case errors.Is(err, shared.ErrAuthRequired):
		return "Not signed in or the session expired. Press l to sign in."
	case errors.Is(err, shared.ErrMissingArgument):
		return "Date and weight are required."
	case errors.Is(err, shared.ErrAuthFailed):
		return fmt.Sprintf("Sign-in failed: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
