package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/dafibh/osdesk/osdesk-backend/internal/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// DesktopView is a desktop as returned to a caller.
// IsEdit is true only when the caller owns the desktop.
type DesktopView struct {
	DesktopID  int32                 `json:"-"`
	OSName     string                `json:"osName"`
	State      *domain.StateDocument `json:"state"`
	Folders    map[string][]string   `json:"folders"`
	IsPublic   bool                  `json:"isPublic"`
	Background domain.Background     `json:"background"`
	IsEdit     bool                  `json:"isEdit"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// DesktopService reads and writes desktops
type DesktopService struct {
	userRepo       domain.UserRepository
	desktopRepo    domain.DesktopRepository
	metrics        *metrics.Metrics
	sanitizer      *bluemonday.Policy
	eventPublisher websocket.EventPublisher
}

// NewDesktopService creates a new DesktopService. m may be nil.
func NewDesktopService(userRepo domain.UserRepository, desktopRepo domain.DesktopRepository, m *metrics.Metrics) *DesktopService {
	return &DesktopService{
		userRepo:    userRepo,
		desktopRepo: desktopRepo,
		metrics:     m,
		sanitizer:   bluemonday.UGCPolicy(),
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *DesktopService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *DesktopService) publishEvent(desktopID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(desktopID, event)
	}
}

// GetByOSName returns the desktop registered under osName.
// callerAuth0ID is empty for anonymous callers. Private desktops are only
// readable by their owner.
func (s *DesktopService) GetByOSName(ctx context.Context, osName, callerAuth0ID string) (*DesktopView, error) {
	desktop, err := s.desktopRepo.GetByOSName(ctx, osName)
	if err != nil {
		return nil, err
	}

	isOwner, err := s.isOwner(ctx, desktop, callerAuth0ID)
	if err != nil {
		return nil, err
	}

	if !desktop.IsPublic && !isOwner {
		return nil, domain.ErrForbidden
	}

	return s.view(desktop, isOwner)
}

// GetOwn returns the caller's own desktop
func (s *DesktopService) GetOwn(ctx context.Context, auth0ID string) (*DesktopView, error) {
	desktop, err := s.ownDesktop(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return s.view(desktop, true)
}

// SaveState validates raw and replaces the caller's stored state with it.
// Nothing is written when validation fails; the returned error then
// satisfies errors.Is(err, domain.ErrInvalidState).
func (s *DesktopService) SaveState(ctx context.Context, auth0ID string, raw []byte) (*DesktopView, error) {
	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	doc, err := domain.DecodeState(raw)
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.sanitize(doc)

	encoded, err := json.Marshal(doc)
	if err != nil {
		s.metrics.RecordStateSave(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to encode desktop state: %w", err)
	}

	if err := s.desktopRepo.UpdateState(ctx, user.ID, encoded); err != nil {
		if !errors.Is(err, domain.ErrDesktopNotFound) {
			s.metrics.RecordStateSave(metrics.OutcomeFailed)
		}
		return nil, err
	}

	desktop, err := s.desktopRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	view, err := s.view(desktop, true)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStateSave(metrics.OutcomeSaved)
	s.publishEvent(desktop.ID, websocket.DesktopStateUpdated(map[string]interface{}{
		"osName":    view.OSName,
		"state":     view.State,
		"updatedAt": view.UpdatedAt,
	}))

	log.Info().
		Str("auth0_id", auth0ID).
		Str("os_name", desktop.OSName).
		Int("app_count", len(doc.Apps)).
		Msg("Desktop state saved")

	return view, nil
}

// SetVisibility makes the caller's desktop public or private.
// Making it private disconnects every live viewer other than the owner.
func (s *DesktopService) SetVisibility(ctx context.Context, auth0ID string, isPublic bool) error {
	desktop, err := s.ownDesktop(ctx, auth0ID)
	if err != nil {
		return err
	}

	if err := s.desktopRepo.UpdateVisibility(ctx, desktop.UserID, isPublic); err != nil {
		return err
	}

	s.publishEvent(desktop.ID, websocket.DesktopVisibilityUpdated(map[string]interface{}{
		"osName":   desktop.OSName,
		"isPublic": isPublic,
	}))
	if !isPublic && s.eventPublisher != nil {
		s.eventPublisher.DisconnectViewers(desktop.ID)
	}

	log.Info().Str("os_name", desktop.OSName).Bool("is_public", isPublic).Msg("Desktop visibility updated")
	return nil
}

// SetBackground sets the caller's desktop background
func (s *DesktopService) SetBackground(ctx context.Context, auth0ID string, background string) error {
	parsed, err := domain.ParseBackground(background)
	if err != nil {
		return err
	}

	desktop, err := s.ownDesktop(ctx, auth0ID)
	if err != nil {
		return err
	}

	if err := s.desktopRepo.UpdateBackground(ctx, desktop.UserID, parsed); err != nil {
		return err
	}

	s.publishEvent(desktop.ID, websocket.DesktopBackgroundUpdated(map[string]interface{}{
		"osName":     desktop.OSName,
		"background": parsed,
	}))
	return nil
}

func (s *DesktopService) ownDesktop(ctx context.Context, auth0ID string) (*domain.Desktop, error) {
	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return s.desktopRepo.GetByUserID(ctx, user.ID)
}

func (s *DesktopService) isOwner(ctx context.Context, desktop *domain.Desktop, callerAuth0ID string) (bool, error) {
	if callerAuth0ID == "" {
		return false, nil
	}
	caller, err := s.userRepo.GetByAuth0ID(ctx, callerAuth0ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return caller.ID == desktop.UserID, nil
}

// view re-validates the stored state with the same rules as the write path
func (s *DesktopService) view(desktop *domain.Desktop, isOwner bool) (*DesktopView, error) {
	doc, err := domain.DecodeState(desktop.RawState)
	if err != nil {
		s.metrics.IncCorruptReads()
		log.Error().
			Err(err).
			Int32("desktop_id", desktop.ID).
			Str("os_name", desktop.OSName).
			Msg("Stored desktop state failed validation")
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}

	return &DesktopView{
		DesktopID:  desktop.ID,
		OSName:     desktop.OSName,
		State:      doc,
		Folders:    doc.FolderContents(),
		IsPublic:   desktop.IsPublic,
		Background: desktop.Background,
		IsEdit:     isOwner,
		UpdatedAt:  desktop.UpdatedAt,
	}, nil
}

// sanitize strips unsafe markup from rich text memo content
func (s *DesktopService) sanitize(doc *domain.StateDocument) {
	for i := range doc.Apps {
		if doc.Apps[i].Content != "" {
			doc.Apps[i].Content = s.sanitizer.Sanitize(doc.Apps[i].Content)
		}
	}
}

func (s *DesktopService) recordRejection(err error) {
	var shapeErr *domain.ShapeError
	if errors.As(err, &shapeErr) {
		s.metrics.RecordStateSave(metrics.OutcomeShapeError)
		return
	}

	s.metrics.RecordStateSave(metrics.OutcomeInconsistent)
	var consistencyErr *domain.ConsistencyError
	if errors.As(err, &consistencyErr) {
		for _, category := range consistencyErr.Categories() {
			s.metrics.RecordViolation(category)
		}
	}
}
