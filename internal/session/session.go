package session

import (
	"context"
	"time"

	"github.com/desertthunder/inbody/internal/models"
)

// DefaultBuffer is the assumed token lifetime, shorter than the 60 minutes Google grants.
const DefaultBuffer = 55 * time.Minute

// State is the credential status reported to the presentation layer.
type State int

const (
	Unauthenticated State = iota
	Valid
	Expired
	Refreshing
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Refreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

// Prompt selects how a token request may interact with the user.
type Prompt int

const (
	// Silent requests must not show any UI.
	Silent Prompt = iota
	// Interactive requests may open the consent screen.
	Interactive
)

func (p Prompt) String() string {
	if p == Interactive {
		return "interactive"
	}
	return "silent"
}

// Grant is what the identity provider hands back on a successful request.
type Grant struct {
	AccessToken string
	IDToken     string // IDToken is optional; when present it carries the profile claims
}

// Loader is a component that must be made ready before use.
type Loader interface {
	Load(ctx context.Context) error
}

// IdentityProvider issues, revokes and describes access tokens.
type IdentityProvider interface {
	Loader
	RequestToken(ctx context.Context, prompt Prompt) (*Grant, error)
	Revoke(ctx context.Context, token string) error
	UserInfo(ctx context.Context, token string) (*models.Profile, error)
}

// TokenSink receives the current token. An empty token means "signed out".
type TokenSink interface {
	Loader
	SetToken(token string)
}

// Store persists the token and its expiry as a pair.
type Store interface {
	LoadCredential(ctx context.Context) (token string, expiry time.Time, ok bool, err error)
	SaveCredential(ctx context.Context, token string, expiry time.Time) error
	ClearCredential(ctx context.Context) error
}
