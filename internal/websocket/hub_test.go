package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func TestHub_PublishReachesOrderSubscribersOnly(t *testing.T) {
	hub := startHub(t)

	follower := NewClient(hub, nil, "ORD-001")
	other := NewClient(hub, nil, "ORD-002")
	hub.Register(follower)
	hub.Register(other)
	require.Eventually(t, func() bool {
		return hub.Subscribers("ORD-001") == 1 && hub.Subscribers("ORD-002") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish("ORD-001", map[string]string{"status": "Delivered"}))

	select {
	case msg := <-follower.Send:
		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg, &payload))
		assert.Equal(t, "Delivered", payload["status"])
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the update")
	}

	select {
	case <-other.Send:
		t.Fatal("subscriber of another order received the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, "ORD-001")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.Subscribers("ORD-001") == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)

	require.Eventually(t, func() bool { return hub.Subscribers("ORD-001") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// more than the unregister buffer holds
		for i := 0; i < 300; i++ {
			hub.Unregister(NewClient(hub, nil, "ORD-001"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unregister blocked after Stop")
	}

	late := NewClient(hub, nil, "ORD-001")
	hub.Register(late)
	_, open := <-late.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("ORD-001"))
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := startHub(t)

	assert.NoError(t, hub.Publish("ORD-404", map[string]string{"status": "Delayed"}))
}

func TestClientPumps_OverRealConnection(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, &Conn{Conn: ws}, "ORD-001")
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("ORD-001") == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish("ORD-001", map[string]string{"status": "In Transit"}))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "In Transit")
}
