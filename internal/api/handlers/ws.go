package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// TradeStreamHandler upgrades the connection and streams every trade in
// execution order. A client that cannot keep up is evicted by the hub; its
// channel closes and the connection is dropped rather than sent a gap.
func (h *Handler) TradeStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("trade stream connected")

	// Reader only surfaces disconnects; clients send nothing meaningful.
	go func() {
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		sub.Close()
		conn.Close()
		h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("trade stream disconnected")
	}()

	for tr := range sub.C() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(tradeToDTO(tr)); err != nil {
			return
		}
	}

	// Channel closed: hub shut down or this subscriber fell too far behind.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
}
