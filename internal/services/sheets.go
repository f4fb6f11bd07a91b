package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/shared"
)

// SheetsOptions configures a [SheetsClient].
type SheetsOptions struct {
	SpreadsheetID string
	// Endpoint overrides the API base URL, for tests.
	Endpoint string
	// RequestsPerMinute caps outgoing requests. Zero or less disables throttling.
	RequestsPerMinute int
	Transport         http.RoundTripper
	Logger            *log.Logger
}

// SheetsClient talks to the Google Sheets v4 API with whatever token the session manager last
// handed it. It implements [records.Client] and session.TokenSink.
type SheetsClient struct {
	opts SheetsOptions

	mu    sync.RWMutex
	token string
	svc   *sheets.Service
}

// NewSheetsClient creates a [SheetsClient]. Call Load before use.
func NewSheetsClient(opts SheetsOptions) *SheetsClient {
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &SheetsClient{opts: opts}
}

// Load builds the API service. The HTTP stack is bearer auth over a rate limiter over Transport.
func (c *SheetsClient) Load(ctx context.Context) error {
	if c.opts.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id is empty", shared.ErrMissingConfig)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: bearerSource{c},
			Base:   newThrottledTransport(c.opts.Transport, c.opts.RequestsPerMinute),
		},
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.opts.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.opts.Endpoint))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}

	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// SetToken replaces the bearer token. An empty token makes every request fail with
// [shared.ErrNotAuthenticated] before it leaves the process.
func (c *SheetsClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Values returns every row in rng with each cell stringified.
func (c *SheetsClient) Values(ctx context.Context, rng string) ([][]string, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(c.opts.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}

	c.opts.Logger.Debug("values read", "range", resp.Range, "rows", len(rows))
	return rows, nil
}

// Append inserts rows after the table in rng, letting Sheets parse them as if typed.
func (c *SheetsClient) Append(ctx context.Context, rng string, rows [][]string) (*records.AppendResult, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	resp, err := svc.Spreadsheets.Values.Append(c.opts.SpreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(records.ValueInputUserEntered).
		InsertDataOption(records.InsertRows).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	result := &records.AppendResult{TableRange: resp.TableRange}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
		result.UpdatedCells = resp.Updates.UpdatedCells
	}
	return result, nil
}

func (c *SheetsClient) service() (*sheets.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets client not loaded", shared.ErrServiceUnavailable)
	}
	return c.svc, nil
}

// bearerSource exposes the client's current token to [oauth2.Transport] without letting anything
// else read it back.
type bearerSource struct {
	c *SheetsClient
}

func (b bearerSource) Token() (*oauth2.Token, error) {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	if b.c.token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: b.c.token, TokenType: "Bearer"}, nil
}

// throttledTransport waits on a token bucket before each request.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func newThrottledTransport(base http.RoundTripper, perMinute int) *throttledTransport {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &throttledTransport{base: base, limiter: rate.NewLimiter(limit, 1)}
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
