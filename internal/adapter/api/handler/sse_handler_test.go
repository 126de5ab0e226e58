package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/lead-intake/internal/adapter/pii"
	"github.com/V4T54L/lead-intake/internal/domain"
)

func TestSSEBroker_StreamsRedactedEvents(t *testing.T) {
	broker := NewSSEBroker(pii.NewRedactor([]string{"email"}), discardLogger())
	srv := httptest.NewServer(broker)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return broker.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, broker.Publish(context.Background(), domain.LeadEvent{
		ID:      "e1",
		Type:    domain.EventLeadCreated,
		LeadID:  "9",
		Payload: map[string]any{"email": "a@b.co", "firstName": "Ada"},
	}))

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, data)

	var event domain.LeadEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "e1", event.ID)
	assert.True(t, event.Redacted)
	assert.Equal(t, pii.RedactedPlaceholder, event.Payload["email"])
	assert.Equal(t, "Ada", event.Payload["firstName"])

	cancel()
	require.Eventually(t, func() bool { return broker.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSSEBroker_PublishWithoutClients(t *testing.T) {
	broker := NewSSEBroker(nil, discardLogger())
	assert.NoError(t, broker.Publish(context.Background(), domain.LeadEvent{ID: "e1"}))
	assert.Zero(t, broker.Clients())
}
