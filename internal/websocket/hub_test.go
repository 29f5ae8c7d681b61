package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyEventQueuesWithoutRunningLoop(t *testing.T) {
	hub := NewHub()

	hub.NotifyEvent("company-1", EventNfeImported, map[string]string{"access_key": "abc"})

	select {
	case msg := <-hub.Broadcast:
		assert.Equal(t, "company-1", msg.CompanyID)

		var event Event
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, EventNfeImported, event.Type)
	default:
		t.Fatal("event was dropped despite a free buffer slot")
	}
}

func TestNotifyEventDropsOnlyWhenSaturated(t *testing.T) {
	hub := NewHub()

	for i := 0; i < broadcastBuffer+10; i++ {
		hub.NotifyEvent("company-1", EventCertificateValidated, nil)
	}

	// The buffer holds exactly its capacity; the overflow was dropped
	// without blocking the callers.
	assert.Len(t, hub.Broadcast, broadcastBuffer)
}
