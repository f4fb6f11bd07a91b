package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/inbody/internal/models"
)

// profileFromIDToken reads the profile claims of an OpenID Connect ID token.
//
// The signature is not checked: the token arrives directly from Google's token endpoint over TLS
// and is only used for display. Returns nil when the token is absent, malformed or carries no
// name or email.
func profileFromIDToken(raw string) *models.Profile {
	if raw == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)

	if name == "" && email == "" {
		return nil
	}

	return &models.Profile{Name: name, Email: email, Picture: picture}
}
