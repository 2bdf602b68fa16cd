package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/middleware"
	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// OSNameHandler handles OS name availability and registration
type OSNameHandler struct {
	osNameService *service.OSNameService
}

// NewOSNameHandler creates a new OSNameHandler
func NewOSNameHandler(osNameService *service.OSNameService) *OSNameHandler {
	return &OSNameHandler{osNameService: osNameService}
}

// OSNameRequest represents the request body of both OS name endpoints
type OSNameRequest struct {
	OSName string `json:"osName"`
}

// AvailabilityResponse represents the response of a successful check
type AvailabilityResponse struct {
	OSName    string `json:"osName"`
	Available bool   `json:"available"`
}

// RegisterResponse represents the response of a successful registration
type RegisterResponse struct {
	OSName     string            `json:"osName"`
	IsPublic   bool              `json:"isPublic"`
	Background domain.Background `json:"background"`
}

// Check reports whether an OS name is still free
// @Summary Check OS name availability
// @Tags os-names
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body OSNameRequest true "OS name"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /os-names/check [post]
func (h *OSNameHandler) Check(c echo.Context) error {
	var req OSNameRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	name, err := h.osNameService.CheckAvailability(c.Request().Context(), req.OSName)
	if err != nil {
		return h.osNameError(c, err, req.OSName)
	}

	return c.JSON(http.StatusOK, AvailabilityResponse{OSName: name, Available: true})
}

// Register assigns an OS name to the caller and creates their desktop
// @Summary Register OS name
// @Tags os-names
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body OSNameRequest true "OS name"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /os-names [post]
func (h *OSNameHandler) Register(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req OSNameRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	desktop, err := h.osNameService.Register(c.Request().Context(), auth0ID, req.OSName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found. Complete login first")
		}
		return h.osNameError(c, err, req.OSName)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		OSName:     desktop.OSName,
		IsPublic:   desktop.IsPublic,
		Background: desktop.Background,
	})
}

func (h *OSNameHandler) osNameError(c echo.Context, err error, name string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOSName):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "osName", Message: "OS name must be 2-10 letters, digits, '-' or '_'"},
		})
	case errors.Is(err, domain.ErrOSNameTaken):
		return NewConflictError(c, "OS name is already taken")
	case errors.Is(err, domain.ErrOSNameAlreadySet):
		return NewConflictError(c, "You have already registered an OS name")
	default:
		log.Error().Err(err).Str("os_name", name).Msg("OS name operation failed")
		return NewInternalError(c, "Failed to process OS name")
	}
}
