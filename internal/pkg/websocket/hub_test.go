package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
)

type countingObserver struct {
	mu      sync.Mutex
	current int
}

func (o *countingObserver) ClientConnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current++
}

func (o *countingObserver) ClientDisconnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current--
}

func (o *countingObserver) value() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

type recordingChat struct {
	mu       sync.Mutex
	contents []string
	statuses []models.MessageStatus
}

func (r *recordingChat) SendMessage(_ context.Context, _, _, content string) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if content == "fail" {
		return nil, errors.New("not a participant")
	}
	r.contents = append(r.contents, content)
	return &models.ChatMessage{Content: content}, nil
}

func (r *recordingChat) UpdateMessageStatus(_ context.Context, _ string, ids []string, status models.MessageStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	return len(ids), nil
}

func startHub(t *testing.T, observer Observer) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(zerolog.Nop(), nil, observer)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user"), r.URL.Query().Get("chat"))
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, user, chat string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?user=" + user + "&chat=" + chat
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestHubPublishReachesOnlyChatSubscribers(t *testing.T) {
	observer := &countingObserver{}
	hub, server := startHub(t, observer)

	student := dial(t, server, "student-1", "chat-1")
	agent := dial(t, server, "agent-1", "chat-1")
	other := dial(t, server, "student-2", "chat-2")

	require.Eventually(t, func() bool {
		return hub.ClientsCount("chat-1") == 2 && hub.ClientsCount("chat-2") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, observer.value())

	hub.Publish("chat-1", EventMessageCreated, map[string]string{"content": "hello"})

	for _, conn := range []*websocket.Conn{student, agent} {
		event := readEvent(t, conn)
		assert.Equal(t, EventMessageCreated, event.Type)
		assert.Equal(t, "chat-1", event.ChatID)
		assert.Equal(t, map[string]any{"content": "hello"}, event.Data)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "chat-2 subscriber must not see chat-1 events")
}

func TestHubUnregistersClosedClients(t *testing.T) {
	observer := &countingObserver{}
	hub, server := startHub(t, observer)

	conn := dial(t, server, "student-1", "chat-1")
	require.Eventually(t, func() bool { return hub.ClientsCount("chat-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientsCount("chat-1") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, observer.value())
}

func TestHubAfterShutdown(t *testing.T) {
	observer := &countingObserver{}
	hub := NewHub(zerolog.Nop(), nil, observer)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	served := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- hub.Serve(w, r, r.URL.Query().Get("user"), r.URL.Query().Get("chat"))
	}))
	t.Cleanup(server.Close)

	dial(t, server, "student-1", "chat-1")
	require.NoError(t, <-served)
	require.Eventually(t, func() bool { return hub.ClientsCount("chat-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, hub.ClientsCount("chat-1"))
	assert.Equal(t, 0, observer.value())

	t.Run("late unregister returns", func(t *testing.T) {
		result := make(chan bool, 1)
		go func() { result <- hub.handOff(hub.unregister, &Client{chatID: "chat-1"}) }()
		select {
		case ok := <-result:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("unregister blocked on a stopped hub")
		}
	})

	t.Run("new connections are refused", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?user=student-2&chat=chat-1"
		if conn, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
			defer conn.Close()
		}
		select {
		case err := <-served:
			assert.ErrorIs(t, err, ErrHubStopped)
		case <-time.After(2 * time.Second):
			t.Fatal("Serve blocked on a stopped hub")
		}
		assert.Equal(t, 0, hub.ClientsCount("chat-1"))
	})
}

func TestHubInboundFrames(t *testing.T) {
	hub, server := startHub(t, nil)
	chat := &recordingChat{}
	hub.SetInboundHandler(NewMessageHandler(chat))

	conn := dial(t, server, "student-1", "chat-1")
	require.Eventually(t, func() bool { return hub.ClientsCount("chat-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: FrameSendMessage, Content: "hi"}))
	require.NoError(t, conn.WriteJSON(InboundFrame{Type: FrameUpdateStatus, Status: "READ", MessageIDs: []string{"m1"}}))

	require.Eventually(t, func() bool {
		chat.mu.Lock()
		defer chat.mu.Unlock()
		return len(chat.contents) == 1 && len(chat.statuses) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"hi"}, chat.contents)
	assert.Equal(t, []models.MessageStatus{models.MessageRead}, chat.statuses)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: FrameSendMessage, Content: "fail"}))
	event := readEvent(t, conn)
	assert.Equal(t, EventError, event.Type)
}

func TestMessageHandlerRejectsBadFrames(t *testing.T) {
	handler := NewMessageHandler(&recordingChat{})
	ctx := context.Background()

	tests := []struct {
		name  string
		frame InboundFrame
	}{
		{"empty content", InboundFrame{Type: FrameSendMessage}},
		{"sent is not a target status", InboundFrame{Type: FrameUpdateStatus, Status: "SENT", MessageIDs: []string{"m1"}}},
		{"no message ids", InboundFrame{Type: FrameUpdateStatus, Status: "READ"}},
		{"unknown type", InboundFrame{Type: "typing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, handler.HandleFrame(ctx, "u1", "c1", tt.frame))
		})
	}
}
