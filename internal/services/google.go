package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/repositories"
	"github.com/desertthunder/inbody/internal/server"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
)

// Google endpoints that [golang.org/x/oauth2/google] does not provide.
const (
	GoogleRevokeURL   = "https://oauth2.googleapis.com/revoke"
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleScopes grants spreadsheet access plus the profile claims shown by `auth status`.
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"openid",
	"profile",
	"email",
}

// GoogleOptions configures a [GoogleIdentity].
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	// RedirectURI must point at ListenAddr. When empty it is derived from the bound address.
	RedirectURI string
	ListenAddr  string
	Store       KeyValueStore
	HTTPClient  *http.Client
	// OpenBrowser shows the consent page. Defaults to [shared.OpenBrowser].
	OpenBrowser func(url string) error
	Logger      *log.Logger

	// Endpoint, RevokeURL and UserInfoURL default to Google's production endpoints.
	Endpoint    oauth2.Endpoint
	RevokeURL   string
	UserInfoURL string
}

// GoogleIdentity implements [session.IdentityProvider] against Google's OAuth 2.0 endpoints.
//
// Interactive requests run the authorization code flow with PKCE through a loopback redirect.
// Silent requests use the refresh token saved by the last interactive request.
type GoogleIdentity struct {
	opts GoogleOptions

	mu     sync.Mutex
	config *oauth2.Config
}

// NewGoogleIdentity creates a [GoogleIdentity]. Call Load before use.
func NewGoogleIdentity(opts GoogleOptions) *GoogleIdentity {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Endpoint.TokenURL == "" {
		opts.Endpoint = google.Endpoint
	}
	if opts.RevokeURL == "" {
		opts.RevokeURL = GoogleRevokeURL
	}
	if opts.UserInfoURL == "" {
		opts.UserInfoURL = GoogleUserInfoURL
	}
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}
	return &GoogleIdentity{opts: opts}
}

// Load validates the client registration and prepares the OAuth2 config.
func (g *GoogleIdentity) Load(ctx context.Context) error {
	if g.opts.ClientID == "" {
		return fmt.Errorf("%w: google client id is empty", shared.ErrMissingConfig)
	}
	if g.opts.Store == nil {
		return fmt.Errorf("%w: no store for the refresh token", shared.ErrInvalidConfig)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = &oauth2.Config{
		ClientID:     g.opts.ClientID,
		ClientSecret: g.opts.ClientSecret,
		RedirectURL:  g.opts.RedirectURI,
		Scopes:       GoogleScopes,
		Endpoint:     g.opts.Endpoint,
	}
	return nil
}

// RequestToken obtains a fresh access token.
func (g *GoogleIdentity) RequestToken(ctx context.Context, prompt session.Prompt) (*session.Grant, error) {
	config, err := g.oauthConfig()
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.opts.HTTPClient)

	var token *oauth2.Token
	if prompt == session.Interactive {
		token, err = g.consent(ctx, config)
	} else {
		token, err = g.refresh(ctx, config)
	}
	if err != nil {
		return nil, err
	}

	if token.RefreshToken != "" {
		if err := g.opts.Store.Set(ctx, repositories.KeyProviderRefreshToken, token.RefreshToken); err != nil {
			g.opts.Logger.Warn("failed to save refresh token", "err", err)
		}
	}

	idToken, _ := token.Extra("id_token").(string)
	return &session.Grant{AccessToken: token.AccessToken, IDToken: idToken}, nil
}

// refresh exchanges the stored refresh token without any UI.
func (g *GoogleIdentity) refresh(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	refreshToken, ok, err := g.opts.Store.Get(ctx, repositories.KeyProviderRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok || refreshToken == "" {
		return nil, shared.ErrConsentRequired
	}

	token, err := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
			if err := g.opts.Store.Delete(ctx, repositories.KeyProviderRefreshToken); err != nil {
				g.opts.Logger.Warn("failed to forget refresh token", "err", err)
			}
			return nil, fmt.Errorf("%w: %w", shared.ErrConsentRequired, err)
		}
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	g.opts.Logger.Debug("access token refreshed")
	return token, nil
}

// consent runs the browser flow and waits for the loopback redirect or ctx.
func (g *GoogleIdentity) consent(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	cfg := *config
	handler := server.NewOAuthHandler(ctx, &cfg, state, oauth2.VerifierOption(verifier))
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(g.opts.Logger))
	router.Handler(handler)

	lb, err := server.Listen(g.opts.ListenAddr, router)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lb.Shutdown(shutdownCtx); err != nil {
			g.opts.Logger.Warn("error shutting down callback server", "err", err)
		}
	}()

	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://" + lb.Addr() + "/callback"
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	g.opts.Logger.Debug("callback listener ready", "addr", lb.Addr(), "routes", router.Patterns())
	g.opts.Logger.Info("waiting for Google consent", "callback", cfg.RedirectURL)
	if err := g.opts.OpenBrowser(authURL); err != nil {
		g.opts.Logger.Warn("could not open browser; open this URL manually", "url", authURL, "err", err)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return nil, result.Error()
		}
		if result.Token == nil {
			return nil, fmt.Errorf("no token received")
		}
		return result.Token, nil
	case err := <-lb.Errors():
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Revoke invalidates token at Google and forgets the refresh token, which Google revokes with it.
func (g *GoogleIdentity) Revoke(ctx context.Context, token string) error {
	if g.opts.Store != nil {
		if err := g.opts.Store.Delete(ctx, repositories.KeyProviderRefreshToken); err != nil {
			g.opts.Logger.Warn("failed to forget refresh token", "err", err)
		}
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.opts.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: revoke: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: revoke: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// UserInfo fetches the OpenID Connect profile for token.
func (g *GoogleIdentity) UserInfo(ctx context.Context, token string) (*models.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: userinfo rejected the token", shared.ErrNotAuthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("userinfo error: status %d", resp.StatusCode)
	}

	var profile models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &profile, nil
}

func (g *GoogleIdentity) oauthConfig() (*oauth2.Config, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.config == nil {
		return nil, fmt.Errorf("%w: google identity not loaded", shared.ErrInitialization)
	}
	return g.config, nil
}
