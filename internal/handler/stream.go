package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chesadev/marketsim/internal/stream"
)

const streamWriteTimeout = 10 * time.Second

// StreamHandler serves the websocket price tick stream.
type StreamHandler struct {
	hub      *stream.Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *stream.Hub, log *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Stream handles GET /api/stocks/stream: upgrades to a websocket and
// pushes a JSON tick for every price write until the client closes or
// falls too far behind.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	id, ticks := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	// Drain client frames so close handshakes are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-clientGone:
			return
		case tick, open := <-ticks:
			if !open {
				// Hub dropped us as a lagging subscriber.
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(tick); err != nil {
				return
			}
		}
	}
}
