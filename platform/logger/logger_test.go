package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestBookingActionFailureLogsReason(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production")

	log.BookingAction("b-1", "approve", "provider", false, "Failed to update booking")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "booking_action", entry["msg"])
	assert.Equal(t, "approve", entry["action"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "Failed to update booking", entry["reason"])
}

func TestWithContextAddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-1")
	log.WithContext(ctx).Info("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
}

func TestDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "Development")

	log.Debug("details")

	assert.Contains(t, buf.String(), "msg=details")
}
