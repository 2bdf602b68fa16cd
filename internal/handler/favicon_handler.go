package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// FaviconHandler resolves favicons for website apps
type FaviconHandler struct {
	faviconService *service.FaviconService
}

// NewFaviconHandler creates a new FaviconHandler
func NewFaviconHandler(faviconService *service.FaviconService) *FaviconHandler {
	return &FaviconHandler{faviconService: faviconService}
}

// Lookup returns the favicon and title of a website
// @Summary Look up a website favicon
// @Tags favicon
// @Security BearerAuth
// @Produce json
// @Param url query string true "Absolute http(s) URL"
// @Success 200 {object} service.SiteInfo
// @Failure 400 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /favicon [get]
func (h *FaviconHandler) Lookup(c echo.Context) error {
	target := c.QueryParam("url")
	if target == "" {
		return NewValidationError(c, "URL required", []ValidationError{
			{Field: "url", Message: "URL is required"},
		})
	}

	info, err := h.faviconService.Lookup(c.Request().Context(), target)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSiteURL), errors.Is(err, service.ErrBlockedSiteHost):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "url", Message: err.Error()},
			})
		case errors.Is(err, service.ErrSiteUnreachable):
			return c.JSON(http.StatusBadGateway, ProblemDetails{
				Type:     ErrorTypeServiceUnavailable,
				Title:    "Bad Gateway",
				Status:   http.StatusBadGateway,
				Detail:   "Website could not be fetched",
				Instance: c.Request().URL.Path,
			})
		default:
			log.Error().Err(err).Str("url", target).Msg("Favicon lookup failed")
			return NewInternalError(c, "Failed to look up favicon")
		}
	}

	return c.JSON(http.StatusOK, info)
}
