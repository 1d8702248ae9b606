package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish("x")
	assert.Equal(t, "x", <-a)
	assert.Equal(t, "x", <-b)
}

func TestHubDropsWhenSlow(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// channel buffer is 10; extra publishes must not block
	for i := 0; i < 25; i++ {
		h.Publish("e")
	}
	assert.Len(t, ch, 10)
}

func TestMakeEventEnvelope(t *testing.T) {
	raw := MakeEvent("req-1", TypeItemCreated, 1, map[string]any{"id": 7})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TypeItemCreated, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.False(t, e.At.IsZero())

	var data map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.EqualValues(t, 7, data["id"])
}
