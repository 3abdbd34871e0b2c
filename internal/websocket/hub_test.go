package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/session"
)

type staticCompleter struct{}

func (staticCompleter) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	return "ok", nil
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var msg models.WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubDeliversSessionEvents(t *testing.T) {
	auth := middleware.NewSessionAuth("secret", time.Hour)
	hub := NewHub(nil, nil, auth, nil)
	store := session.NewStore(staticCompleter{}, session.Config{}, hub)
	hub.SetSessions(store)
	defer store.Stop()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	page := store.Create("")
	token, err := auth.GenerateSessionToken(page.ID)
	require.NoError(t, err)

	ws, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer ws.Close()

	snapshot := readMessage(t, ws)
	assert.Equal(t, EventSnapshot, snapshot.Type)

	require.Eventually(t, func() bool { return hub.ConnectionCount(page.ID) == 1 }, time.Second, 10*time.Millisecond)

	page.Router.Navigate("about")

	msg := readMessage(t, ws)
	assert.Equal(t, session.EventRouteChanged, msg.Type)
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "about", payload["route"])
}

func TestHubRejectsBadTokens(t *testing.T) {
	auth := middleware.NewSessionAuth("secret", time.Hour)
	hub := NewHub(nil, nil, auth, nil)
	store := session.NewStore(staticCompleter{}, session.Config{}, hub)
	hub.SetSessions(store)
	defer store.Stop()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "not-a-token")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	orphan, err := auth.GenerateSessionToken(uuid.New())
	require.NoError(t, err)
	_, resp, err = dial(t, srv, orphan)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHubRefusesSessionNotHeldLocally(t *testing.T) {
	auth := middleware.NewSessionAuth("secret", time.Hour)
	hub := NewHub(nil, nil, auth, nil)
	store := session.NewStore(staticCompleter{}, session.Config{}, hub)
	hub.SetSessions(store)
	defer store.Stop()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	page := store.Create("")
	token, err := auth.GenerateSessionToken(page.ID)
	require.NoError(t, err)
	require.True(t, store.Delete(page.ID))

	_, resp, err := dial(t, srv, token)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, hub.ConnectionCount(page.ID))
}

func TestPublishWithoutListenersIsHarmless(t *testing.T) {
	hub := NewHub(nil, nil, middleware.NewSessionAuth("secret", time.Hour), nil)
	hub.Publish(context.Background(), uuid.New(), models.WSMessage{Type: "noop"})
	assert.Equal(t, 0, hub.ConnectionCount(uuid.New()))
}
