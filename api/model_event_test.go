package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEvent_FullPayload(t *testing.T) {
	receivedAt := time.Now()
	body := []byte(`{"type":"operation_progress","timestamp":"2026-03-14T09:26:53Z","data":{"completed":3,"operation_id":"op_1"}}`)

	record, err := NormalizeEvent("message", body, receivedAt)
	require.NoError(t, err)

	assert.Equal(t, EventType_OperationProgress, record.Type)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), record.Timestamp)
	assert.Equal(t, receivedAt, record.ReceivedAt)

	completed, ok := record.IntField("completed")
	require.True(t, ok)
	assert.Equal(t, 3, completed)

	id, ok := record.StringField("operation_id")
	require.True(t, ok)
	assert.Equal(t, "op_1", id)
}

func TestNormalizeEvent_TypeFallsBackToWireName(t *testing.T) {
	record, err := NormalizeEvent("log", []byte(`{"data":{"message":"starting"}}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, EventType_Log, record.Type)
}

func TestNormalizeEvent_TimestampFallsBackToReceiptTime(t *testing.T) {
	receivedAt := time.Now()
	record, err := NormalizeEvent("status", []byte(`{"timestamp":"not-a-time"}`), receivedAt)
	require.NoError(t, err)
	assert.Equal(t, receivedAt, record.Timestamp)

	record, err = NormalizeEvent("status", nil, receivedAt)
	require.NoError(t, err)
	assert.Equal(t, receivedAt, record.Timestamp)
}

func TestNormalizeEvent_MalformedJSON(t *testing.T) {
	_, err := NormalizeEvent("status", []byte(`{"type": nope`), time.Now())
	assert.Error(t, err)
}

func TestNormalizeEvent_UnknownTypePreserved(t *testing.T) {
	record, err := NormalizeEvent("model_registered", []byte(`{"data":{"model":"new-model-v2"}}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, EventType("model_registered"), record.Type)
	assert.False(t, record.Type.Known())
}

func TestEventType_Known(t *testing.T) {
	for _, known := range []EventType{
		EventType_Connected, EventType_Status, EventType_Log,
		EventType_OperationStart, EventType_OperationProgress,
		EventType_OperationComplete, EventType_Test, EventType_Error,
	} {
		assert.True(t, known.Known(), string(known))
	}
	assert.False(t, EventType("heartbeat_v2").Known())
}
