package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/auth"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

// AuthService implements email-only login: the first login with an unknown
// address creates the account, using the local part as the display name.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login finds or creates the user for the address and issues an access
// token.
func (s *AuthService) Login(ctx context.Context, email string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", apperror.ValidationFailed("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, "", apperror.ValidationFailed("email", "invalid email address")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account.
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Email: email,
			Name:  email[:at],
		}
		if err := s.users.Create(ctx, user); err != nil {
			s.logger.Error("failed to create user",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
			return nil, "", fmt.Errorf("creating user: %w", err)
		}
		s.logger.Info("user created", slog.String("id", user.ID))
	default:
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}

// Me returns the account for an authenticated user ID.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
