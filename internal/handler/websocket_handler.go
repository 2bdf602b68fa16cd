package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/dafibh/osdesk/osdesk-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      websocket.TokenValidator
	desktopService *service.DesktopService
	metrics        *metrics.Metrics
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. m may be nil.
func NewWebSocketHandler(hub *websocket.Hub, validator websocket.TokenValidator, desktopService *service.DesktopService, m *metrics.Metrics, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		desktopService: desktopService,
		metrics:        m,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleDesktopWS subscribes to live events of one desktop at
// GET /ws/desktops/:osName. The token query parameter is optional; visitors
// may only follow public desktops.
func (h *WebSocketHandler) HandleDesktopWS(c echo.Context) error {
	osName := c.Param("osName")

	var auth0ID string
	if token := c.QueryParam("token"); token != "" {
		id, err := h.validator.ValidateToken(c.Request().Context(), token)
		if err != nil {
			log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
			return NewUnauthorizedError(c, "Invalid token")
		}
		auth0ID = id
	}

	view, err := h.desktopService.GetByOSName(c.Request().Context(), osName, auth0ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDesktopNotFound):
			return NewNotFoundError(c, "Desktop not found")
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "This desktop is private")
		default:
			log.Error().Err(err).Str("os_name", osName).Msg("Failed to resolve desktop for WebSocket")
			return NewInternalError(c, "Failed to open desktop stream")
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, view.DesktopID, view.IsEdit, h.hub)
	h.hub.Register(client)
	h.metrics.IncWSConnections()

	log.Info().
		Str("os_name", osName).
		Int32("desktop_id", view.DesktopID).
		Bool("owner", view.IsEdit).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.metrics.DecWSConnections()
	}()

	return nil
}
