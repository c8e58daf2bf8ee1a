package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/treasurycurve/internal/infra"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; restrict in production
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed to build a view for a select message.
	selectTimeout = 30 * time.Second
)

// Message types exchanged on the dashboard channel.
const (
	msgSelect = "select"
	msgView   = "view"
	msgError  = "error"
	msgPing   = "ping"
	msgPong   = "pong"
)

// wsInbound is a client message; Data is decoded per Type.
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SelectRequest asks for the view at an as-of index (0 = most recent).
type SelectRequest struct {
	Index    int    `json:"index"`
	Provider string `json:"provider,omitempty"`
}

// handleWebSocket upgrades HTTP connections to WebSocket. Clients select
// dates over the connection and receive refresh broadcasts.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		infra.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	client := &WSClient{
		hub:  s.wsHub,
		send: make(chan WSMessage, 256),
	}

	s.wsHub.Register(client)

	// Start reader and writer goroutines
	go wsWritePump(conn, client)
	go wsReadPump(conn, client, s)
}

// wsReadPump pumps messages from the WebSocket connection to the hub.
func wsReadPump(conn *websocket.Conn, client *WSClient, s *Server) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				infra.Warnf("WebSocket read error: %v", err)
			}
			break
		}

		// Parse incoming message
		var msg wsInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case msgSelect:
			client.reply(s.selectView(msg.Data))
		case msgPing:
			client.reply(WSMessage{Type: msgPong})
		}
	}
}

// selectView answers a select message with a view or an error message.
// The request context ends with the upgrade handler, so each select gets
// its own deadline.
func (s *Server) selectView(raw json.RawMessage) WSMessage {
	var req SelectRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			return wsError("invalid select payload: " + err.Error())
		}
	}
	name := req.Provider
	if name == "" {
		name = s.primary
	}
	board, ok := s.boards[name]
	if !ok {
		return wsError("unknown provider " + name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), selectTimeout)
	defer cancel()
	v, err := board.View(ctx, req.Index)
	if err != nil {
		return wsError(err.Error())
	}
	return WSMessage{Type: msgView, Data: v}
}

func wsError(msg string) WSMessage {
	return WSMessage{Type: msgError, Data: map[string]string{"error": msg}}
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				infra.Errorf("WebSocket marshal error: %v", err)
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			// Flush queued messages
			n := len(client.send)
			for i := 0; i < n; i++ {
				nextMsg := <-client.send
				nextData, err := json.Marshal(nextMsg)
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, nextData); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
