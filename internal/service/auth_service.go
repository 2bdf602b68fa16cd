package service

import (
	"context"
	"errors"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo    domain.UserRepository
	desktopRepo domain.DesktopRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, desktopRepo domain.DesktopRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		desktopRepo: desktopRepo,
	}
}

// AuthResult represents the result of an authentication operation.
// Desktop is nil until the user registers an OS name.
type AuthResult struct {
	User    *domain.User
	Desktop *domain.Desktop
}

// HasDesktop reports whether the user has completed OS name registration
func (r *AuthResult) HasDesktop() bool {
	return r.Desktop != nil
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// The user row is created on first login; the desktop only exists after an
// OS name has been registered.
func (s *AuthService) AuthenticateUser(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	return s.resolve(ctx, user)
}

// CurrentUser returns the caller and their desktop, if any
func (s *AuthService) CurrentUser(ctx context.Context, auth0ID string) (*AuthResult, error) {
	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user)
}

func (s *AuthService) resolve(ctx context.Context, user *domain.User) (*AuthResult, error) {
	if !user.HasOSName() {
		log.Info().Str("user_id", user.ID.String()).Msg("User authenticated without OS name")
		return &AuthResult{User: user}, nil
	}

	desktop, err := s.desktopRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDesktopNotFound) {
			log.Warn().Str("user_id", user.ID.String()).Msg("User has OS name but no desktop")
			return &AuthResult{User: user}, nil
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get desktop")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{User: user, Desktop: desktop}, nil
}
