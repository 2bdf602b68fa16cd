package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/middleware"
	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IconHandler handles custom icon uploads
type IconHandler struct {
	iconService *service.IconService
}

// NewIconHandler creates a new IconHandler
func NewIconHandler(iconService *service.IconService) *IconHandler {
	return &IconHandler{iconService: iconService}
}

// IconCatalogResponse lists the built-in icons an app may use
type IconCatalogResponse struct {
	Icons []domain.IconSpec `json:"icons"`
}

// GetCatalog returns the built-in icon catalog
// @Summary List built-in icons
// @Tags icons
// @Produce json
// @Success 200 {object} IconCatalogResponse
// @Router /icons/catalog [get]
func (h *IconHandler) GetCatalog(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.JSON(http.StatusOK, IconCatalogResponse{Icons: domain.IconCatalog()})
}

// UploadIcon stores an image as a custom app icon
// @Summary Upload custom icon
// @Tags icons
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Icon image (jpg, png, gif)"
// @Success 201 {object} service.Icon
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /icons [post]
func (h *IconHandler) UploadIcon(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	// If storage isn't configured, don't attempt to process/upload.
	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewServiceUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxIconSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 2MB"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxIconSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	icon, err := h.iconService.Upload(c.Request().Context(), auth0ID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIconTooLarge),
			errors.Is(err, service.ErrInvalidIconFormat),
			errors.Is(err, service.ErrIconTooSmall),
			errors.Is(err, service.ErrIconDimensionsTooLarge),
			errors.Is(err, service.ErrInvalidIconData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: capitalize(err.Error())},
			})
		case errors.Is(err, domain.ErrUserNotFound):
			return NewNotFoundError(c, "User not found")
		default:
			log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to upload icon")
			return NewInternalError(c, "Failed to upload icon")
		}
	}

	return c.JSON(http.StatusCreated, icon)
}

// GetIcon redirects to a short-lived URL of the stored icon
// @Summary Fetch custom icon
// @Tags icons
// @Param userId path string true "Owner user ID"
// @Param iconId path string true "Icon ID"
// @Success 302
// @Failure 404 {object} ProblemDetails
// @Router /icons/{userId}/{iconId} [get]
func (h *IconHandler) GetIcon(c echo.Context) error {
	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewServiceUnavailableError(c, "Icon storage not configured")
	}

	url, err := h.iconService.PresignedURL(c.Request().Context(), c.Param("userId"), c.Param("iconId"))
	if err != nil {
		if errors.Is(err, service.ErrIconNotFound) {
			return NewNotFoundError(c, "Icon not found")
		}
		log.Error().Err(err).Str("icon_id", c.Param("iconId")).Msg("Failed to presign icon")
		return NewInternalError(c, "Failed to get icon")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return c.Redirect(http.StatusFound, url)
}

// DeleteIcon removes one of the caller's icons
// @Summary Delete custom icon
// @Tags icons
// @Security BearerAuth
// @Param iconId path string true "Icon ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /icons/{iconId} [delete]
func (h *IconHandler) DeleteIcon(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewServiceUnavailableError(c, "Icon deletion is disabled (storage not configured)")
	}

	iconID := c.Param("iconId")
	if err := h.iconService.Delete(c.Request().Context(), auth0ID, iconID); err != nil {
		switch {
		case errors.Is(err, service.ErrIconNotFound):
			return NewNotFoundError(c, "Icon not found")
		case errors.Is(err, domain.ErrUserNotFound):
			return NewNotFoundError(c, "User not found")
		default:
			log.Error().Err(err).Str("auth0_id", auth0ID).Str("icon_id", iconID).Msg("Failed to delete icon")
			return NewInternalError(c, "Failed to delete icon")
		}
	}

	log.Info().Str("auth0_id", auth0ID).Str("icon_id", iconID).Msg("Icon deleted")
	return c.NoContent(http.StatusNoContent)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
