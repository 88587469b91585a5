package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/pkg/dto"
)

func newHubClient(h *Hub, category string) *Client {
	c := &Client{send: make(chan []byte, 4), category: category}
	h.register <- c
	return c
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastAlertReachesAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newHubClient(h, "")
	b := newHubClient(h, "")

	h.BroadcastAlert(&dto.WSAlert{Category: "Overcrowding", Severity: 4, Message: "LIB over capacity"})

	var got dto.WSAlert
	require.NoError(t, json.Unmarshal(recv(t, a), &got))
	assert.Equal(t, "Overcrowding", got.Category)
	assert.Equal(t, 4, got.Severity)
	require.NoError(t, json.Unmarshal(recv(t, b), &got))
	assert.Equal(t, "LIB over capacity", got.Message)
}

func TestHubCategoryFilter(t *testing.T) {
	h := NewHub()
	go h.Run()

	filtered := newHubClient(h, "Missing Person")

	h.BroadcastAlert(&dto.WSAlert{Category: "Overcrowding", Severity: 2, Message: "ignored"})
	assertSilent(t, filtered)

	h.BroadcastAlert(&dto.WSAlert{Category: "Missing Person", Severity: 3, Message: "delivered"})
	var got dto.WSAlert
	require.NoError(t, json.Unmarshal(recv(t, filtered), &got))
	assert.Equal(t, "delivered", got.Message)
}

func TestHubRawImportNoticesSkipFilteredClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	unfiltered := newHubClient(h, "")
	filtered := newHubClient(h, "Overcrowding")

	// Import batch notices carry no alert_type and must only reach
	// clients without a category filter.
	notice, err := json.Marshal(map[string]interface{}{"source": "wifi_logs", "rows": 120})
	require.NoError(t, err)
	h.BroadcastRaw(notice)

	assert.JSONEq(t, string(notice), string(recv(t, unfiltered)))
	assertSilent(t, filtered)
}
