package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const (
	msgInvalidCredentials = "invalid credentials"
	msgInvalidToken       = "invalid or expired token"
	msgUserExists         = "user already exists"
)

// Service registers users, checks credentials and resolves bearer tokens to users.
type Service struct {
	repo   Repository
	authn  Authenticator
	logger *zap.Logger
}

// NewService creates an auth service.
func NewService(repo Repository, authn Authenticator, logger *zap.Logger) *Service {
	return &Service{repo: repo, authn: authn, logger: logger}
}

// Register creates a user and issues a token. No token is issued on any failure.
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*models.TokenResponse, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Persistence("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(msgUserExists)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Persistence("failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, email, hash, name)
	if errors.Is(err, ErrEmailTaken) {
		return nil, apperr.Conflict(msgUserExists)
	}
	if err != nil {
		return nil, apperr.Persistence("failed to create user", err)
	}
	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Persistence("failed to look up user", err)
	}
	if user == nil {
		utils.BurnCompare(password)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(user)
}

// Resolve maps a bearer token to a local user. Provider tokens are linked to a user by subject.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.authn.VerifyToken(token)
	if err != nil {
		return nil, apperr.Forbidden(msgInvalidToken)
	}

	if claims.UserID > 0 {
		user, err := s.repo.GetByID(ctx, claims.UserID)
		if err != nil {
			return nil, apperr.Persistence("failed to look up user", err)
		}
		if user == nil {
			return nil, apperr.Forbidden(msgInvalidToken)
		}
		return user, nil
	}

	email := normalizeEmail(claims.Email)
	if email == "" {
		email = claims.Subject + "@users.external.invalid"
	}
	user, err := s.repo.GetOrCreateExternal(ctx, claims.Subject, email)
	if errors.Is(err, ErrEmailTaken) {
		s.logger.Warn("provider email already belongs to a local account", zap.String("subject", claims.Subject))
		return nil, apperr.Conflict(msgUserExists)
	}
	if err != nil {
		return nil, apperr.Persistence("failed to link external user", err)
	}
	return user, nil
}

// User returns the user with the given id.
func (s *Service) User(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*models.TokenResponse, error) {
	token, err := s.authn.IssueToken(user)
	if err != nil {
		return nil, apperr.Persistence("failed to generate token", err)
	}
	return &models.TokenResponse{Token: token, User: user.ToPublic()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
