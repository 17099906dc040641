package sweepmon

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/launchdarkly/eventsource"
	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

// ConnectionState is the stream lifecycle. Transitions are
// disconnected -> connecting -> connected -> disconnected; a dropped
// connection fully returns to disconnected before any reconnect attempt, so
// observers never read a half-reset state.
type ConnectionState int32

const (
	ConnectionState_Disconnected ConnectionState = iota
	ConnectionState_Connecting
	ConnectionState_Connected
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionState_Connecting:
		return "connecting"
	case ConnectionState_Connected:
		return "connected"
	}
	return "disconnected"
}

// StreamClient owns one long-lived SSE connection to the benchmark engine's
// event endpoint. Each inbound message is normalized into an EventRecord,
// appended to the caller's EventBuffer, and forwarded to onEvent.
//
// Reconnection is manual only: a finished operation legitimately stops
// emitting, and auto-retry would misrepresent it as still live. Callers see
// the drop via State/LastError and the ClientEvent channel and decide for
// themselves.
type StreamClient struct {
	options *Options
	buffer  *EventBuffer
	onEvent func(api.EventRecord)

	// Dedicated client without an overall timeout. The shared request client
	// would kill a healthy stream once its timeout elapsed.
	httpClient *http.Client

	mu      sync.Mutex
	stream  *eventsource.Stream
	url     string
	lastErr error

	state atomic.Int32
}

// NewStreamClient builds a disconnected client. onEvent may be nil; buffer
// must not be.
func NewStreamClient(options *Options, buffer *EventBuffer, onEvent func(api.EventRecord)) *StreamClient {
	return &StreamClient{
		options:    options,
		buffer:     buffer,
		onEvent:    onEvent,
		httpClient: &http.Client{},
	}
}

// State returns the current lifecycle state.
func (c *StreamClient) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// LastError returns the reason for the most recent disconnect. Cleared by
// the next Connect call.
func (c *StreamClient) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Connect opens the stream. Calling while already connecting or connected is
// a no-op, never a second connection.
func (c *StreamClient) Connect(url string) error {
	if !c.state.CompareAndSwap(int32(ConnectionState_Disconnected), int32(ConnectionState_Connecting)) {
		util.Debugf("Stream - Connect ignored, already %s", c.State())
		return nil
	}

	c.mu.Lock()
	c.lastErr = nil
	c.url = url
	c.mu.Unlock()

	// CloseNow tells eventsource not to retry on its own; see the manual
	// reconnect policy above.
	errorHandler := func(err error) eventsource.StreamErrorHandlerResult {
		c.recordError(err)
		return eventsource.StreamErrorHandlerResult{CloseNow: true}
	}

	stream, err := eventsource.SubscribeWithURL(url,
		eventsource.StreamOptionErrorHandler(errorHandler),
		eventsource.StreamOptionHTTPClient(c.httpClient))
	if err != nil {
		c.recordError(err)
		c.state.Store(int32(ConnectionState_Disconnected))
		c.notify(api.ClientEventType_StreamDisconnected, "failure", "Error connecting to event stream: "+url, err)
		return err
	}

	c.mu.Lock()
	c.stream = stream
	c.mu.Unlock()
	c.state.Store(int32(ConnectionState_Connected))

	record := api.EventRecord{
		Type:       api.EventType_Connected,
		Timestamp:  time.Now(),
		ReceivedAt: time.Now(),
		Data:       map[string]interface{}{"endpoint": url},
	}
	c.deliver(record)
	c.notify(api.ClientEventType_StreamConnected, "success", "Connected to event stream: "+url, nil)

	go c.receive(stream.Events)
	return nil
}

// Disconnect tears the stream down. Always safe, even if never connected.
func (c *StreamClient) Disconnect() {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	c.state.Store(int32(ConnectionState_Disconnected))
}

func (c *StreamClient) receive(events <-chan eventsource.Event) {
	for event := range events {
		receivedAt := time.Now()
		record, err := api.NormalizeEvent(event.Event(), []byte(event.Data()), receivedAt)
		if err != nil {
			// A malformed message is logged and skipped; it never ends the
			// session.
			util.Debugf("Stream - skipping malformed message (%v): %.200s", err, event.Data())
			continue
		}
		c.deliver(record)
	}

	// Events channel closed: the stream is gone, either via Disconnect or a
	// transport error already captured by the error handler.
	wasConnected := c.state.Swap(int32(ConnectionState_Disconnected)) == int32(ConnectionState_Connected)
	if wasConnected && c.LastError() != nil {
		c.notify(api.ClientEventType_StreamDisconnected, "failure", "Event stream closed", c.LastError())
	}
}

func (c *StreamClient) deliver(record api.EventRecord) {
	c.buffer.Append(record)
	if c.onEvent != nil {
		c.onEvent(record)
	}
}

func (c *StreamClient) recordError(err error) {
	util.Warnf("Stream - transport error: %v", err)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *StreamClient) notify(eventType api.ClientEventType, status, message string, err error) {
	if c.options == nil || c.options.ClientEventHandler == nil {
		return
	}
	select {
	case c.options.ClientEventHandler <- api.ClientEvent{
		EventType: eventType,
		EventData: message,
		Status:    status,
		Error:     err,
	}:
	default:
	}
}
