package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the viewer information carried in the access token claims.
// The token is decoded without signature verification: the client has no
// signing key and the server remains authoritative on every call.
type Identity struct {
	UserID    string
	Username  string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the access token has passed its expiry claim.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

type accessClaims struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Inspect decodes the stored access token's claims. It returns
// ErrNotAuthenticated when no credentials are stored.
func (s *Store) Inspect() (Identity, error) {
	creds, err := s.Load()
	if err != nil {
		return Identity{}, err
	}
	return decodeIdentity(creds.AccessToken)
}

func decodeIdentity(accessToken string) (Identity, error) {
	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return Identity{}, errors.New("access token is not a valid JWT")
	}

	id := Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if id.UserID == "" {
		id.UserID = claims.Subject
	}
	return id, nil
}
