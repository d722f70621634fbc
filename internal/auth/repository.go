package auth

import (
	"context"
	"errors"

	"github.com/aura-survey/backend/internal/models"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// Repository handles user persistence. Lookups return nil, nil when no user matches.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string, name *string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetOrCreateExternal returns the user linked to a provider subject, creating it on first sight.
	GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error)
}
