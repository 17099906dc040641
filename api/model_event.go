package api

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of a stream event. The vocabulary below is
// what the benchmark engine emits today; unknown types are preserved so a
// newer server does not break an older dashboard.
type EventType string

const (
	EventType_Connected         EventType = "connected"
	EventType_Status            EventType = "status"
	EventType_Log               EventType = "log"
	EventType_OperationStart    EventType = "operation_start"
	EventType_OperationProgress EventType = "operation_progress"
	EventType_OperationComplete EventType = "operation_complete"
	EventType_Test              EventType = "test"
	EventType_Error             EventType = "error"
)

// Known reports whether the type is part of the fixed vocabulary. Unknown
// types must still be buffered and rendered generically.
func (t EventType) Known() bool {
	switch t {
	case EventType_Connected, EventType_Status, EventType_Log,
		EventType_OperationStart, EventType_OperationProgress,
		EventType_OperationComplete, EventType_Test, EventType_Error:
		return true
	}
	return false
}

// EventRecord is the normalized shape every inbound stream message is reduced
// to before buffering. ReceivedAt is local observation time and is the
// authoritative ordering key; Timestamp is whatever the producer claimed.
type EventRecord struct {
	Type       EventType              `json:"type"`
	Timestamp  time.Time              `json:"timestamp"`
	ReceivedAt time.Time              `json:"receivedAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// eventWire is the raw message body. All fields are optional on the wire;
// defaults are filled in by NormalizeEvent.
type eventWire struct {
	Type      string                 `json:"type,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NormalizeEvent parses one raw SSE message body into an EventRecord.
// wireName is the SSE-level event name and is the fallback for a missing
// type field; receivedAt is the fallback for a missing or unparseable
// timestamp. A JSON error is returned to the caller, which logs and skips
// the message; one bad payload never ends the stream.
func NormalizeEvent(wireName string, body []byte, receivedAt time.Time) (EventRecord, error) {
	var wire eventWire
	if len(body) > 0 {
		if err := json.Unmarshal(body, &wire); err != nil {
			return EventRecord{}, err
		}
	}

	record := EventRecord{
		Type:       EventType(wire.Type),
		ReceivedAt: receivedAt,
		Data:       wire.Data,
	}
	if record.Type == "" {
		record.Type = EventType(wireName)
	}
	if ts, err := time.Parse(time.RFC3339, wire.Timestamp); err == nil {
		record.Timestamp = ts
	} else {
		record.Timestamp = receivedAt
	}
	return record, nil
}

// IntField extracts an integer value from the event data map, tolerating the
// float64 representation json.Unmarshal produces for JSON numbers.
func (r EventRecord) IntField(key string) (int, bool) {
	v, ok := r.Data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// StringField extracts a string value from the event data map.
func (r EventRecord) StringField(key string) (string, bool) {
	v, ok := r.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
