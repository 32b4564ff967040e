package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"stego-backend/models"
)

const chatHistoryLimit = 50

// ChatPublisher is the broadcast sink for relayed chat messages. The
// handler only publishes; fan-out state lives behind this interface
// instead of in package-level globals.
type ChatPublisher interface {
	Publish(msg models.ChatMessage)
}

// ChatHub fans chat messages out to every live websocket connection and
// keeps a bounded history for late joiners.
type ChatHub struct {
	mu      sync.Mutex
	conns   map[*websocket.Conn]struct{}
	history []models.ChatMessage
}

func NewChatHub() *ChatHub {
	return &ChatHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *ChatHub) add(conn *websocket.Conn) []models.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	return append([]models.ChatMessage(nil), h.history...)
}

func (h *ChatHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Publish records the message and sends it to all live connections,
// quietly dropping sockets that fail.
func (h *ChatHub) Publish(msg models.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, msg)
	if len(h.history) > chatHistoryLimit {
		h.history = h.history[len(h.history)-chatHistoryLimit:]
	}

	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ChatHandler relays end-to-end encrypted chat messages between clients.
// The server never sees plaintext; clients send ciphertext plus the cover
// text the payload hides in.
type ChatHandler struct {
	hub      *ChatHub
	upgrader websocket.Upgrader
}

func NewChatHandler(hub *ChatHub) *ChatHandler {
	return &ChatHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type chatInbound struct {
	Ciphertext string `json:"ciphertext"`
	Sender     string `json:"sender"`
	Cover      string `json:"cover"`
}

func (h *ChatHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() {
		h.hub.remove(conn)
		conn.Close()
	}()

	// Replay history to the newly connected client.
	for _, entry := range h.hub.add(conn) {
		if err := conn.WriteJSON(entry); err != nil {
			return
		}
	}

	for {
		var in chatInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}

		if in.Ciphertext == "" {
			conn.WriteJSON(gin.H{"type": "error", "message": "Missing ciphertext"})
			continue
		}
		if in.Cover == "" {
			conn.WriteJSON(gin.H{"type": "error", "message": "Missing cover message"})
			continue
		}
		sender := in.Sender
		if sender == "" {
			sender = "anonymous"
		}

		h.hub.Publish(models.ChatMessage{
			Type:       "chat",
			ID:         uuid.NewString(),
			Ciphertext: in.Ciphertext,
			Sender:     sender,
			Cover:      in.Cover,
			SentAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
