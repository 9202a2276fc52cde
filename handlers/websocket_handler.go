package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
)

// EventLiveSnapshot is the first message a new live client receives.
const EventLiveSnapshot = "LIVE_SNAPSHOT"

type WebSocketHandler struct {
	hub       *live.Hub
	standings services.StandingsService
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; an empty list
// accepts any origin.
func NewWebSocketHandler(hub *live.Hub, standings services.StandingsService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WebSocketHandler{
		hub:       hub,
		standings: standings,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// ServeWs joins the client to the tournament's room. Clients connect to
// /ws/tournaments/{tournamentID} and receive the current live snapshot first.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.standings.LiveSnapshot(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	first, err := json.Marshal(live.WebSocketMessage{
		Type:    EventLiveSnapshot,
		Payload: snap,
		RoomID:  live.RoomForTournament(tournamentID),
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.RoomForTournament(tournamentID),
	}
	client.Send <- first

	select {
	case h.hub.Register <- client:
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("live client connected", slog.Int("tournament_id", tournamentID))
}
