package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	before := time.Now()
	evt := New("CHAT_ANSWERED", map[string]interface{}{"session_id": "s1"})

	assert.Equal(t, "CHAT_ANSWERED", evt.EventType())
	assert.Equal(t, "s1", evt.Payload()["session_id"])
	assert.False(t, evt.Timestamp().Before(before))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), New("X", nil)))
}
