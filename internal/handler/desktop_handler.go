package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/middleware"
	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DesktopHandler handles desktop-related HTTP requests
type DesktopHandler struct {
	desktopService *service.DesktopService
}

// NewDesktopHandler creates a new DesktopHandler
func NewDesktopHandler(desktopService *service.DesktopService) *DesktopHandler {
	return &DesktopHandler{desktopService: desktopService}
}

// SaveStateRequest carries a candidate state document
type SaveStateRequest struct {
	State json.RawMessage `json:"state" swaggertype:"object"`
}

// UpdateVisibilityRequest represents the request body for changing visibility
type UpdateVisibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// UpdateBackgroundRequest represents the request body for changing the background
type UpdateBackgroundRequest struct {
	Background string `json:"background"`
}

// GetDesktop returns the desktop registered under an OS name
// @Summary Read a desktop
// @Tags desktops
// @Produce json
// @Param osName path string true "OS name"
// @Success 200 {object} service.DesktopView
// @Failure 403 {object} ProblemDetails
// @Failure 404 "null body"
// @Router /desktops/{osName} [get]
func (h *DesktopHandler) GetDesktop(c echo.Context) error {
	osName := c.Param("osName")
	auth0ID := middleware.GetAuth0ID(c)

	view, err := h.desktopService.GetByOSName(c.Request().Context(), osName, auth0ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDesktopNotFound):
			return c.JSON(http.StatusNotFound, nil)
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "This desktop is private")
		default:
			log.Error().Err(err).Str("os_name", osName).Msg("Failed to get desktop")
			return NewInternalError(c, "Failed to get desktop")
		}
	}

	return c.JSON(http.StatusOK, view)
}

// GetOwnDesktop returns the caller's desktop
// @Summary Read own desktop
// @Tags desktops
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.DesktopView
// @Failure 404 {object} ProblemDetails
// @Router /desktop [get]
func (h *DesktopHandler) GetOwnDesktop(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	view, err := h.desktopService.GetOwn(c.Request().Context(), auth0ID)
	if err != nil {
		return h.ownerError(c, auth0ID, err, "Failed to get desktop")
	}

	return c.JSON(http.StatusOK, view)
}

// SaveState replaces the caller's desktop state
// @Summary Write desktop state
// @Tags desktops
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SaveStateRequest true "Candidate state"
// @Success 200 {object} service.DesktopView
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /desktop/state [put]
func (h *DesktopHandler) SaveState(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SaveStateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.State) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "state", Message: "State is required"},
		})
	}

	view, err := h.desktopService.SaveState(c.Request().Context(), auth0ID, req.State)
	if err != nil {
		if handled, resp := writeStateError(c, err); handled {
			log.Debug().Err(err).Str("auth0_id", auth0ID).Msg("Desktop state rejected")
			return resp
		}
		return h.ownerError(c, auth0ID, err, "Failed to save desktop state")
	}

	return c.JSON(http.StatusOK, view)
}

// UpdateVisibility makes the caller's desktop public or private
// @Summary Set desktop visibility
// @Tags desktops
// @Security BearerAuth
// @Accept json
// @Param request body UpdateVisibilityRequest true "Visibility"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /desktop/visibility [put]
func (h *DesktopHandler) UpdateVisibility(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateVisibilityRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.IsPublic == nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "isPublic", Message: "isPublic is required"},
		})
	}

	if err := h.desktopService.SetVisibility(c.Request().Context(), auth0ID, *req.IsPublic); err != nil {
		return h.ownerError(c, auth0ID, err, "Failed to update visibility")
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateBackground sets the caller's desktop background
// @Summary Set desktop background
// @Tags desktops
// @Security BearerAuth
// @Accept json
// @Param request body UpdateBackgroundRequest true "Background"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /desktop/background [put]
func (h *DesktopHandler) UpdateBackground(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateBackgroundRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.desktopService.SetBackground(c.Request().Context(), auth0ID, req.Background); err != nil {
		if errors.Is(err, domain.ErrInvalidBackground) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "background", Message: "Unknown background"},
			})
		}
		return h.ownerError(c, auth0ID, err, "Failed to update background")
	}

	return c.NoContent(http.StatusNoContent)
}

// ownerError maps failures of owner-only desktop operations
func (h *DesktopHandler) ownerError(c echo.Context, auth0ID string, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrDesktopNotFound):
		return NewNotFoundError(c, "Desktop not found. Register an OS name first")
	default:
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg(msg)
		return NewInternalError(c, msg)
	}
}
