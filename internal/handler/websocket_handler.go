package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// GroupLookup resolves the group a WebSocket client wants to follow
type GroupLookup interface {
	GetGroup(id uuid.UUID) (*domain.Group, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	groups         GroupLookup
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, groups GroupLookup, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		groups:         groups,
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

// HandleWS handles WebSocket connection requests at GET /ws?group=<id>
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	raw := c.QueryParam("group")
	if raw == "" {
		log.Debug().Msg("WebSocket connection rejected: missing group")
		return echo.NewHTTPError(http.StatusBadRequest, "missing group")
	}

	groupID, err := uuid.Parse(raw)
	if err != nil {
		log.Debug().Str("group", raw).Msg("WebSocket connection rejected: invalid group id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid group")
	}

	if _, err := h.groups.GetGroup(groupID); err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "group not found")
		}
		log.Error().Err(err).Str("group_id", groupID.String()).Msg("WebSocket group lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "group lookup failed")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Create client and register with hub
	client := websocket.NewClient(conn, groupID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("group_id", groupID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// events go out on one goroutine, disconnects are noticed on the other
	go client.Deliver()
	go client.AwaitDisconnect()

	return nil
}
