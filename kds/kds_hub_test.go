package kds

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

func TestHubPublishesToClients(t *testing.T) {
	hub := NewHub(utils.NewDiscardLogger())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, "staff")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("order_created", map[string]interface{}{"order_id": 7})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "order_created", msg.Event)
	assert.Equal(t, float64(7), msg.Data.(map[string]interface{})["order_id"])

	client.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(utils.NewDiscardLogger())
	hub.Publish("session_opened", nil)
	assert.Equal(t, 0, hub.Clients())
}
