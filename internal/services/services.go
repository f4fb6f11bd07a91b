// package services implements the Google-facing halves of inbody: identity and the spreadsheet
package services

import (
	"context"

	"github.com/desertthunder/inbody/internal/records"
	"github.com/desertthunder/inbody/internal/session"
)

// KeyValueStore is the slice of the session slot the identity provider uses for its refresh token.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

var (
	_ session.IdentityProvider = (*GoogleIdentity)(nil)
	_ session.TokenSink        = (*SheetsClient)(nil)
	_ records.Client           = (*SheetsClient)(nil)
)
