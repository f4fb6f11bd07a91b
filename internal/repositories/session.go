package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Keys stored in the session_slot table.
const (
	KeyAccessToken          = "access_token"
	KeyAccessTokenExpiry    = "access_token_expiry"
	KeyProviderRefreshToken = "provider_refresh_token"
)

// SessionRepository persists the session slot.
//
// It satisfies session.Store through the credential methods and services.KeyValueStore through
// Get/Set/Delete.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the value stored under key. The boolean is false when the key is absent.
func (r *SessionRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session_slot WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (r *SessionRepository) Set(ctx context.Context, key, value string) error {
	return upsert(ctx, r.db, key, value)
}

// Delete removes every given key in one transaction. Missing keys are not an error.
func (r *SessionRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_slot WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to delete session[%s]: %w", key, err)
			}
		}
		return nil
	})
}

// LoadCredential reads the persisted access token and its expiry.
//
// ok is false when either half of the pair is missing or the expiry is unreadable. Freshness is
// left to the caller.
func (r *SessionRepository) LoadCredential(ctx context.Context) (token string, expiry time.Time, ok bool, err error) {
	token, hasToken, err := r.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", time.Time{}, false, err
	}

	raw, hasExpiry, err := r.Get(ctx, KeyAccessTokenExpiry)
	if err != nil {
		return "", time.Time{}, false, err
	}

	if !hasToken || !hasExpiry || token == "" {
		return "", time.Time{}, false, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", time.Time{}, false, nil
	}

	return token, time.UnixMilli(ms), true, nil
}

// SaveCredential writes the token and its expiry (epoch milliseconds) together.
func (r *SessionRepository) SaveCredential(ctx context.Context, token string, expiry time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := upsert(ctx, tx, KeyAccessToken, token); err != nil {
			return err
		}
		return upsert(ctx, tx, KeyAccessTokenExpiry, strconv.FormatInt(expiry.UnixMilli(), 10))
	})
}

// ClearCredential removes the token and its expiry together.
func (r *SessionRepository) ClearCredential(ctx context.Context) error {
	return r.Delete(ctx, KeyAccessToken, KeyAccessTokenExpiry)
}
