package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stego-backend/models"
)

func newChatServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ws/chat", NewChatHandler(NewChatHub()).Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
}

func dialChat(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestChatRelayBetweenClients(t *testing.T) {
	_, wsURL := newChatServer(t)

	a := dialChat(t, wsURL)
	b := dialChat(t, wsURL)

	require.NoError(t, a.WriteJSON(map[string]string{
		"ciphertext": "aGlkZGVu",
		"sender":     "alice",
		"cover":      "nice weather today",
	}))

	for _, conn := range []*websocket.Conn{a, b} {
		var msg models.ChatMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "chat", msg.Type)
		assert.Equal(t, "aGlkZGVu", msg.Ciphertext)
		assert.Equal(t, "alice", msg.Sender)
		assert.Equal(t, "nice weather today", msg.Cover)
		assert.NotEmpty(t, msg.ID)
		assert.NotEmpty(t, msg.SentAt)
	}
}

func TestChatRejectsMissingFields(t *testing.T) {
	_, wsURL := newChatServer(t)
	conn := dialChat(t, wsURL)

	require.NoError(t, conn.WriteJSON(map[string]string{"sender": "alice", "cover": "x"}))
	var resp map[string]string
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"ciphertext": "x"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp["type"])
}

func TestChatDefaultsAnonymousSender(t *testing.T) {
	_, wsURL := newChatServer(t)
	conn := dialChat(t, wsURL)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"ciphertext": "x", "cover": "y",
	}))
	var msg models.ChatMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "anonymous", msg.Sender)
}

func TestChatReplaysHistoryToLateJoiner(t *testing.T) {
	_, wsURL := newChatServer(t)
	early := dialChat(t, wsURL)

	for i := 0; i < 3; i++ {
		require.NoError(t, early.WriteJSON(map[string]string{
			"ciphertext": fmt.Sprintf("msg-%d", i),
			"cover":      "cover",
		}))
		var echo models.ChatMessage
		require.NoError(t, early.ReadJSON(&echo))
	}

	late := dialChat(t, wsURL)
	for i := 0; i < 3; i++ {
		var msg models.ChatMessage
		require.NoError(t, late.ReadJSON(&msg))
		assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.Ciphertext)
	}
}

func TestChatHubHistoryIsBounded(t *testing.T) {
	hub := NewChatHub()
	for i := 0; i < chatHistoryLimit+20; i++ {
		hub.Publish(models.ChatMessage{ID: fmt.Sprintf("%d", i)})
	}
	assert.Len(t, hub.history, chatHistoryLimit)
	assert.Equal(t, "20", hub.history[0].ID)
}
