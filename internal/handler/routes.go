package handler

import (
	"github.com/dafibh/osdesk/osdesk-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Request body caps, in echo BodyLimit notation
const (
	// MaxRequestBodySize applies to every request; icon uploads are the largest
	MaxRequestBodySize = "4M"
	// MaxDesktopBodySize applies to the own-desktop routes, state documents included
	MaxDesktopBodySize = "1M"
)

// Handlers groups every API handler registered by RegisterRoutes
type Handlers struct {
	Auth      *AuthHandler
	Desktop   *DesktopHandler
	OSName    *OSNameHandler
	Icon      *IconHandler
	Favicon   *FaviconHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, osNameLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	// Public desktop reads; the owner gets isEdit when signed in
	api.GET("/desktops/:osName", h.Desktop.GetDesktop, authMiddleware.OptionalAuthenticate())

	// Own desktop routes (protected)
	desktop := api.Group("/desktop")
	desktop.Use(echomiddleware.BodyLimit(MaxDesktopBodySize), authMiddleware.Authenticate())
	desktop.GET("", h.Desktop.GetOwnDesktop)
	desktop.PUT("/state", h.Desktop.SaveState)
	desktop.PUT("/visibility", h.Desktop.UpdateVisibility)
	desktop.PUT("/background", h.Desktop.UpdateBackground)

	// OS name routes (protected, rate limited per caller)
	osNames := api.Group("/os-names")
	osNames.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(osNameLimiter))
	osNames.POST("/check", h.OSName.Check)
	osNames.POST("", h.OSName.Register)

	// Icon routes; fetching is public so public desktops can render them
	api.GET("/icons/catalog", h.Icon.GetCatalog)
	api.GET("/icons/:userId/:iconId", h.Icon.GetIcon)
	icons := api.Group("/icons")
	icons.Use(authMiddleware.Authenticate())
	icons.POST("", h.Icon.UploadIcon)
	icons.DELETE("/:iconId", h.Icon.DeleteIcon)

	// Favicon lookup (protected)
	api.GET("/favicon", h.Favicon.Lookup, authMiddleware.Authenticate())

	// Live desktop events; the token travels as a query parameter
	e.GET("/ws/desktops/:osName", h.WebSocket.HandleDesktopWS)
}
