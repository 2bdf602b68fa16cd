package service

import (
	"context"
	"encoding/json"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

// OSNameService handles OS name availability and registration
type OSNameService struct {
	userRepo domain.UserRepository
	metrics  *metrics.Metrics
}

// NewOSNameService creates a new OSNameService. m may be nil.
func NewOSNameService(userRepo domain.UserRepository, m *metrics.Metrics) *OSNameService {
	return &OSNameService{userRepo: userRepo, metrics: m}
}

// CheckAvailability returns the normalized name when no user holds it yet.
// A later Register can still lose a race for the same name.
func (s *OSNameService) CheckAvailability(ctx context.Context, name string) (string, error) {
	normalized, err := domain.NormalizeOSName(name)
	if err != nil {
		return "", err
	}

	exists, err := s.userRepo.ExistsByOSName(ctx, normalized)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.ErrOSNameTaken
	}
	return normalized, nil
}

// Register assigns name to the caller and creates their desktop with an
// empty, private state. An OS name can only be registered once per user.
func (s *OSNameService) Register(ctx context.Context, auth0ID, name string) (*domain.Desktop, error) {
	normalized, err := domain.NormalizeOSName(name)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	if user.HasOSName() {
		return nil, domain.ErrOSNameAlreadySet
	}

	initialState, err := json.Marshal(domain.NewStateDocument())
	if err != nil {
		return nil, err
	}

	desktop, err := s.userRepo.RegisterOSName(ctx, user.ID, normalized, initialState)
	if err != nil {
		return nil, err
	}

	s.metrics.IncOSNameRegistered()
	log.Info().
		Str("user_id", user.ID.String()).
		Str("os_name", normalized).
		Int32("desktop_id", desktop.ID).
		Msg("OS name registered")

	return desktop, nil
}
