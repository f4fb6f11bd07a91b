package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/session"
	"github.com/desertthunder/inbody/internal/shared"
)

// AuthLogin signs in with Google. Without --consent the session is renewed silently when possible.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.session.SignIn(ctx, cmd.Bool("consent")); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: no response from Google within %s", shared.ErrTimeout, timeout)
		}
		return err
	}

	r.writePlain("✓ Signed in to Google\n")
	r.writePlain("Session valid until %s\n", r.session.Expiry().Local().Format(time.DateTime))
	return nil
}

// statusReport is the JSON shape of `auth status`.
type statusReport struct {
	State   string          `json:"state"`
	Expiry  *time.Time      `json:"expiry,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// AuthStatus reports the session state and, when signed in, the Google account.
//
// It never prompts and never renews the session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	report := statusReport{State: r.session.State().String()}

	if r.session.IsValid() {
		expiry := r.session.Expiry()
		report.Expiry = &expiry

		profile, err := r.session.Profile(ctx)
		if err != nil {
			r.logger.Warn("failed to fetch profile", "err", err)
		}
		report.Profile = profile
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Google session")
	r.writePlain("State:   %s\n", report.State)
	if report.Expiry != nil {
		r.writePlain("Expires: %s\n", report.Expiry.Local().Format(time.DateTime))
	}
	if report.Profile != nil {
		r.writePlain("Account: %s <%s>\n", report.Profile.Name, report.Profile.Email)
	}
	if r.session.State() != session.Valid {
		r.writePlainln("Run 'inbody auth login' to sign in.")
	}
	return nil
}

// AuthLogout forgets the session locally and revokes the token with Google.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.SignOut(ctx); err != nil {
		return err
	}
	r.book.Records().Clear()
	return r.writePlain("✓ Signed out\n")
}
