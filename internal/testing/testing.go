// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
)

// FakeProvider is a test double for session.IdentityProvider.
type FakeProvider struct {
	mu      sync.Mutex
	Grant   *session.Grant
	Err     error
	Profile *models.Profile
	prompts []session.Prompt
	revoked []string
}

// NewFakeProvider returns a provider that grants token on every request.
func NewFakeProvider(token string) *FakeProvider {
	return &FakeProvider{Grant: &session.Grant{AccessToken: token}}
}

func (p *FakeProvider) Load(context.Context) error { return nil }

func (p *FakeProvider) RequestToken(ctx context.Context, prompt session.Prompt) (*session.Grant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Grant, nil
}

func (p *FakeProvider) Revoke(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, token)
	return nil
}

func (p *FakeProvider) UserInfo(ctx context.Context, token string) (*models.Profile, error) {
	if p.Profile == nil {
		return nil, errors.New("no profile")
	}
	return p.Profile, nil
}

// Prompts returns every prompt mode requested so far.
func (p *FakeProvider) Prompts() []session.Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]session.Prompt(nil), p.prompts...)
}

// Revoked returns every token passed to Revoke.
func (p *FakeProvider) Revoked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.revoked...)
}

// FakeSheetsClient is an in-memory spreadsheet implementing records.Client and session.TokenSink.
//
// Requests fail with a 401-equivalent error while no token is set.
type FakeSheetsClient struct {
	mu    sync.Mutex
	Rows  [][]string
	Err   error
	token string
	Calls int
}

// NewFakeSheetsClient returns a sheet holding only the header row.
func NewFakeSheetsClient() *FakeSheetsClient {
	return &FakeSheetsClient{Rows: [][]string{{"date", "weight", "bmi", "fat", "muscle", "bone", "visceral", "calories", "age"}}}
}

func (c *FakeSheetsClient) Load(context.Context) error { return nil }

func (c *FakeSheetsClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token reports the token last set, for assertions.
func (c *FakeSheetsClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *FakeSheetsClient) Values(ctx context.Context, rng string) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if err := c.check(); err != nil {
		return nil, err
	}
	out := make([][]string, len(c.Rows))
	copy(out, c.Rows)
	return out, nil
}

func (c *FakeSheetsClient) Append(ctx context.Context, rng string, rows [][]string) (*records.AppendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if err := c.check(); err != nil {
		return nil, err
	}
	c.Rows = append(c.Rows, rows...)
	return &records.AppendResult{UpdatedRange: rng, UpdatedRows: int64(len(rows))}, nil
}

func (c *FakeSheetsClient) check() error {
	if c.token == "" {
		return shared.ErrNotAuthenticated
	}
	return c.Err
}

// MemoryStore is an in-memory session slot implementing session.Store and services.KeyValueStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	expiry time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *MemoryStore) LoadCredential(context.Context) (string, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.values["access_token"]
	return token, s.expiry, ok, nil
}

func (s *MemoryStore) SaveCredential(ctx context.Context, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values["access_token"] = token
	s.expiry = expiry
	return nil
}

func (s *MemoryStore) ClearCredential(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, "access_token")
	s.expiry = time.Time{}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper returns a fixed response and counts requests.
type MockRoundTripper struct {
	mu       sync.Mutex
	response *http.Response
	err      error
	requests int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	return m.response, m.err
}

// Requests reports how many requests reached the transport.
func (m *MockRoundTripper) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return dir
}
