package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/shared"
)

// Options configures a [Manager].
type Options struct {
	Provider IdentityProvider
	Store    Store
	Sink     TokenSink
	Logger   *log.Logger
	Buffer   time.Duration    // Buffer defaults to [DefaultBuffer]
	Clock    func() time.Time // Clock defaults to [time.Now]
}

// Manager owns the access token, its assumed expiry and the persisted copy of both.
//
// The mutex guards in-memory state only and is never held across provider, store or sink calls.
type Manager struct {
	provider IdentityProvider
	store    Store
	sink     TokenSink
	logger   *log.Logger
	buffer   time.Duration
	now      func() time.Time

	mu          sync.Mutex
	token       string
	expiry      time.Time
	profile     *models.Profile
	refreshing  bool
	initialized bool

	revocations sync.WaitGroup
}

// NewManager creates a [Manager] in the Unauthenticated state.
func NewManager(opts Options) *Manager {
	m := &Manager{
		provider: opts.Provider,
		store:    opts.Store,
		sink:     opts.Sink,
		logger:   opts.Logger,
		buffer:   opts.Buffer,
		now:      opts.Clock,
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.buffer <= 0 {
		m.buffer = DefaultBuffer
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Initialize loads the identity provider and the store client concurrently, then restores a
// persisted credential if it has not expired.
//
// Any failure matches [shared.ErrInitialization] and leaves the manager Unauthenticated.
// A second call after success does nothing.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	done := m.initialized
	m.mu.Unlock()
	if done {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.provider.Load(gctx) })
	g.Go(func() error { return m.sink.Load(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInitialization, err)
	}

	token, expiry, ok, err := m.store.LoadCredential(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read session slot: %w", shared.ErrInitialization, err)
	}

	restored := ok && m.now().Before(expiry)

	m.mu.Lock()
	if restored {
		m.token, m.expiry = token, expiry
	}
	m.initialized = true
	m.mu.Unlock()

	if restored {
		m.sink.SetToken(token)
		m.logger.Info("session restored", "expires", expiry.Format(time.RFC3339))
	} else if ok {
		m.logger.Debug("ignoring stale session", "expired", expiry.Format(time.RFC3339))
	}

	return nil
}

// IsValid reports whether a token is held and has not reached its expiry.
func (m *Manager) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validLocked()
}

// NeedsConsent reports whether [Manager.SignIn] will have to show the consent screen.
func (m *Manager) NeedsConsent() bool {
	return !m.IsValid()
}

// State reports the credential status.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.refreshing:
		return Refreshing
	case m.token == "":
		return Unauthenticated
	case m.validLocked():
		return Valid
	default:
		return Expired
	}
}

// Expiry returns the assumed expiry of the held token, or the zero time when none is held.
func (m *Manager) Expiry() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiry
}

// SignIn requests a new token from the provider.
//
// A silent request is escalated to interactive when [Manager.NeedsConsent] is true. On failure the
// error matches [shared.ErrAuthFailed] and the previous state is kept.
func (m *Manager) SignIn(ctx context.Context, interactive bool) error {
	prompt := Silent
	if interactive || m.NeedsConsent() {
		prompt = Interactive
	}
	return m.acquire(ctx, prompt)
}

// EnsureValid returns true when a valid token is held, attempting exactly one silent renewal first
// if it is not. It never prompts and never fails; renewal errors are logged.
func (m *Manager) EnsureValid(ctx context.Context) bool {
	if m.IsValid() {
		return true
	}

	if err := m.acquire(ctx, Silent); err != nil {
		if errors.Is(err, shared.ErrConsentRequired) {
			m.logger.Debug("silent renewal needs consent")
		} else {
			m.logger.Warn("silent renewal failed", "err", err)
		}
	}

	return m.IsValid()
}

// SignOut forgets the credential locally, then revokes it with the provider in the background.
//
// Revocation failures are logged only. Use [Manager.Close] to wait for them.
func (m *Manager) SignOut(ctx context.Context) error {
	token := m.reset()
	m.sink.SetToken("")

	err := m.store.ClearCredential(ctx)

	if token != "" {
		m.revocations.Add(1)
		go func() {
			defer m.revocations.Done()
			if err := m.provider.Revoke(context.WithoutCancel(ctx), token); err != nil {
				m.logger.Warn("token revocation failed", "err", err)
				return
			}
			m.logger.Info("token revoked")
		}()
	}

	m.logger.Info("signed out")

	if err != nil {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}
	return nil
}

// OnRemoteAuthFailure drops the credential after the remote store rejected it.
func (m *Manager) OnRemoteAuthFailure(ctx context.Context) {
	m.reset()
	m.sink.SetToken("")

	if err := m.store.ClearCredential(ctx); err != nil {
		m.logger.Error("failed to clear session slot", "err", err)
	}

	m.logger.Warn("remote store rejected the credential; session cleared")
}

// Profile returns the signed-in identity.
//
// Claims from the ID token are used when the last sign-in returned one; otherwise the provider's
// userinfo endpoint is asked. Fails with [shared.ErrAuthRequired] when no valid token exists.
func (m *Manager) Profile(ctx context.Context) (*models.Profile, error) {
	if !m.EnsureValid(ctx) {
		return nil, shared.ErrAuthRequired
	}

	m.mu.Lock()
	token, cached := m.token, m.profile
	m.mu.Unlock()

	if cached != nil {
		p := *cached
		return &p, nil
	}

	profile, err := m.provider.UserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	m.mu.Lock()
	if m.token == token {
		m.profile = profile
	}
	m.mu.Unlock()

	p := *profile
	return &p, nil
}

// Close waits for background revocations to finish or for ctx to end.
func (m *Manager) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.revocations.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquire performs one token request and, on success, installs the result.
func (m *Manager) acquire(ctx context.Context, prompt Prompt) error {
	m.mu.Lock()
	if m.refreshing {
		m.mu.Unlock()
		return fmt.Errorf("%w: a token request is already in flight", shared.ErrAuthFailed)
	}
	m.refreshing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	m.logger.Debug("requesting token", "prompt", prompt)

	grant, err := m.provider.RequestToken(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if grant == nil || grant.AccessToken == "" {
		return fmt.Errorf("%w: provider returned an empty token", shared.ErrAuthFailed)
	}

	expiry := m.now().Add(m.buffer)

	if err := m.store.SaveCredential(ctx, grant.AccessToken, expiry); err != nil {
		return fmt.Errorf("%w: failed to persist session: %w", shared.ErrAuthFailed, err)
	}

	profile := profileFromIDToken(grant.IDToken)

	m.mu.Lock()
	m.token, m.expiry, m.profile = grant.AccessToken, expiry, profile
	m.mu.Unlock()

	m.sink.SetToken(grant.AccessToken)
	m.logger.Info("signed in", "prompt", prompt, "expires", expiry.Format(time.RFC3339))

	return nil
}

// reset clears the in-memory credential and returns the token that was held.
func (m *Manager) reset() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.token
	m.token, m.expiry, m.profile = "", time.Time{}, nil
	return token
}

func (m *Manager) validLocked() bool {
	return m.token != "" && m.now().Before(m.expiry)
}
