package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/shared"
)

// Value input and insert modes sent with every append.
const (
	ValueInputUserEntered = "USER_ENTERED"
	InsertRows            = "INSERT_ROWS"
)

// AppendResult is the store's acknowledgment of an append.
type AppendResult struct {
	TableRange   string `json:"tableRange"`
	UpdatedRange string `json:"updatedRange"`
	UpdatedRows  int64  `json:"updatedRows"`
	UpdatedCells int64  `json:"updatedCells"`
}

// Client is the remote tabular store.
type Client interface {
	// Values returns every row in rng, stringified.
	Values(ctx context.Context, rng string) ([][]string, error)
	// Append adds rows after the last row of the table found in rng.
	Append(ctx context.Context, rng string, rows [][]string) (*AppendResult, error)
}

// Gate is the part of the session manager the adapter depends on.
type Gate interface {
	EnsureValid(ctx context.Context) bool
	OnRemoteAuthFailure(ctx context.Context)
}

// Adapter reads and appends measurements in one spreadsheet range.
type Adapter struct {
	gate   Gate
	client Client
	rng    string
	logger *log.Logger
}

// NewAdapter creates an [Adapter] for the A1 range rng.
func NewAdapter(gate Gate, client Client, rng string, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{gate: gate, client: client, rng: rng, logger: logger}
}

// ReadAll returns every measurement in the range, header excluded.
func (a *Adapter) ReadAll(ctx context.Context) ([]models.Measurement, error) {
	if !a.gate.EnsureValid(ctx) {
		return nil, shared.ErrAuthRequired
	}

	values, err := a.client.Values(ctx, a.rng)
	if err != nil {
		return nil, a.remoteError(ctx, "read", err)
	}

	records := DecodeRows(values)
	a.logger.Debug("read records", "range", a.rng, "count", len(records))
	return records, nil
}

// AppendOne appends m as a single row.
func (a *Adapter) AppendOne(ctx context.Context, m models.Measurement) (*AppendResult, error) {
	if !a.gate.EnsureValid(ctx) {
		return nil, shared.ErrAuthRequired
	}

	result, err := a.client.Append(ctx, a.rng, [][]string{Encode(m)})
	if err != nil {
		return nil, a.remoteError(ctx, "append", err)
	}

	a.logger.Info("record appended", "date", m.Date, "range", result.UpdatedRange)
	return result, nil
}

func (a *Adapter) remoteError(ctx context.Context, op string, err error) error {
	if IsAuthError(err) {
		a.gate.OnRemoteAuthFailure(ctx)
		return fmt.Errorf("%w: %w", shared.ErrAuthRequired, err)
	}

	a.logger.Error("remote store request failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s: %w", shared.ErrRemoteStore, op, err)
}

// IsAuthError reports whether err means the store rejected the credential.
func IsAuthError(err error) bool {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}
