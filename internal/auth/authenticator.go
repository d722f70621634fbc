package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aura-survey/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrIssueUnsupported is returned by authenticators that only verify tokens minted elsewhere.
	ErrIssueUnsupported = errors.New("token issuing not supported")
)

// Claims holds the identity carried by a verified token. Locally issued tokens set UserID;
// provider tokens set Subject and leave UserID zero.
type Claims struct {
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies bearer tokens.
type Authenticator interface {
	IssueToken(user *models.User) (string, error)
	VerifyToken(token string) (*Claims, error)
}
