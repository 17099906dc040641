package sweepmon

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

// UpdateSource labels where a view model update came from. Sources are
// equally authoritative: the one observed later wins, never the "better"
// one.
type UpdateSource string

const (
	UpdateSource_Stream UpdateSource = "stream"
	UpdateSource_Poll   UpdateSource = "poll"
)

// ViewModel is the merged, display-ready state of one monitored operation.
type ViewModel struct {
	Snapshot api.OperationSnapshot
	// Anomaly holds a data-integrity warning when the last snapshot violated
	// the count invariant. The inconsistent data is still shown; hiding it
	// would be worse than flagging it.
	Anomaly       string
	LastSource    UpdateSource
	LastUpdatedAt time.Time
	// Seq increases by one per applied update. Updates are applied strictly
	// in processing order, so recency ties are impossible.
	Seq     uint64
	Settled bool
}

// viewUpdate is one input to the reducer: either a full snapshot replace
// (poll, control follow-up) or a partial patch from a stream event.
type viewUpdate struct {
	source     UpdateSource
	snapshot   *api.OperationSnapshot
	event      *api.EventRecord
	anomaly    string
	observedAt time.Time
}

// applyUpdate is a pure reducer from (previous view model, update) to the
// next view model. Keeping it side-effect free makes update sequences
// replayable in tests.
func applyUpdate(prev ViewModel, u viewUpdate) ViewModel {
	next := prev
	next.Seq = prev.Seq + 1
	next.LastSource = u.source
	next.LastUpdatedAt = u.observedAt

	switch {
	case u.snapshot != nil:
		// A poll replaces the whole snapshot; it carries fields the stream
		// never does (aggregates) and must not be treated as inferior.
		next.Snapshot = *u.snapshot
		next.Anomaly = u.anomaly
	case u.event != nil:
		patchSnapshot(&next.Snapshot, *u.event)
	}

	if next.Snapshot.Settled() {
		next.Settled = true
	}
	return next
}

// patchSnapshot overlays only the fields a stream event actually carries.
func patchSnapshot(s *api.OperationSnapshot, event api.EventRecord) {
	if id, ok := event.StringField("operation_id"); ok {
		s.OperationID = id
	}
	if n, ok := event.IntField("total"); ok {
		s.Total = n
	}
	if n, ok := event.IntField("completed"); ok {
		s.Completed = n
	}
	if n, ok := event.IntField("failed"); ok {
		s.Failed = n
	}
	if n, ok := event.IntField("pending"); ok {
		s.Pending = n
	}
	if n, ok := event.IntField("running"); ok {
		s.Running = n
	}
	if status, ok := event.StringField("control_status"); ok {
		s.ControlStatus = api.ControlStatus(status)
	}
	if event.Type == api.EventType_OperationComplete && s.ControlStatus == api.ControlStatus_Running {
		s.ControlStatus = api.ControlStatus_Finished
	}
}

// OperationMonitor reconciles one operation's stream events with its polled
// snapshots into a single view model. Each monitor owns exactly one
// StreamClient, one poller and one view model; concurrently observed
// operations never share state.
type OperationMonitor struct {
	operationID string
	options     *Options
	cfg         *HTTPConfiguration
	snapshots   *SnapshotClient
	controls    *ControlClient
	buffer      *EventBuffer

	// generation stamps the active observation; callbacks created under an
	// older generation are guaranteed no-ops after StopObserving.
	generation atomic.Uint64

	mu        sync.Mutex
	stream    *StreamClient
	poller    *SnapshotPoller
	view      ViewModel
	observing bool
}

func newOperationMonitor(operationID string, options *Options, cfg *HTTPConfiguration, snapshots *SnapshotClient, controls *ControlClient) *OperationMonitor {
	m := &OperationMonitor{
		operationID: operationID,
		options:     options,
		cfg:         cfg,
		snapshots:   snapshots,
		controls:    controls,
		buffer:      NewEventBuffer(options.MaxEventBufferSize),
	}
	m.poller = NewSnapshotPoller(operationID, snapshots, nil)
	m.stream = NewStreamClient(options, m.buffer, nil)
	return m
}

// OperationID returns the id this monitor observes.
func (m *OperationMonitor) OperationID() string {
	return m.operationID
}

// Events returns the monitor's event buffer for display.
func (m *OperationMonitor) Events() *EventBuffer {
	return m.buffer
}

// Stream exposes the stream client so dashboards can show connection state
// and reconnect manually after a drop.
func (m *OperationMonitor) Stream() *StreamClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream
}

// BeginObserving starts the poller immediately for a ground-truth baseline
// and, unless streaming is disabled, opens the event stream. Calling it on
// an already-observing monitor is a no-op.
func (m *OperationMonitor) BeginObserving() error {
	m.mu.Lock()
	if m.observing {
		m.mu.Unlock()
		return nil
	}
	m.observing = true
	m.view = ViewModel{}

	gen := m.generation.Add(1)

	poller := NewSnapshotPoller(m.operationID, m.snapshots, func(snapshot api.OperationSnapshot) {
		m.applySnapshot(gen, snapshot)
	})
	stream := NewStreamClient(m.options, m.buffer, func(record api.EventRecord) {
		m.applyStreamEvent(gen, record)
	})
	m.poller = poller
	m.stream = stream
	m.mu.Unlock()

	poller.Start(m.options.PollingInterval)

	if m.options.DisableStreaming {
		return nil
	}

	streamURL := fmt.Sprintf("%s/v1/operations/%s/events", m.cfg.StreamBasePath, m.operationID)
	if err := stream.Connect(streamURL); err != nil {
		// Polling still covers the operation; the caller may retry Connect.
		util.Warnf("Monitor - stream connect failed for %s, continuing on polling alone: %v", m.operationID, err)
	}
	return nil
}

// StopObserving tears down both sources and discards the view model. Any
// in-flight callback from before the teardown is a guaranteed no-op.
func (m *OperationMonitor) StopObserving() {
	m.generation.Add(1)

	m.mu.Lock()
	m.observing = false
	m.view = ViewModel{}
	poller := m.poller
	stream := m.stream
	m.mu.Unlock()

	poller.Stop()
	stream.Disconnect()
}

// Observing reports whether the monitor currently has live sources.
func (m *OperationMonitor) Observing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observing
}

// ViewModel returns a copy of the current merged state.
func (m *OperationMonitor) ViewModel() ViewModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := m.view
	view.Snapshot.Units = append([]api.UnitStatus(nil), m.view.Snapshot.Units...)
	return view
}

// Pause asks the server to pause the operation, then re-synchronizes from a
// fresh snapshot. The command response itself is never trusted.
func (m *OperationMonitor) Pause() error {
	return m.control("pause")
}

// Resume asks the server to resume a paused operation.
func (m *OperationMonitor) Resume() error {
	return m.control("resume")
}

// Cancel asks the server to cancel the operation.
func (m *OperationMonitor) Cancel() error {
	return m.control("cancel")
}

func (m *OperationMonitor) control(action string) error {
	// Captured before the roundtrip: a StopObserving racing the command
	// makes the follow-up apply a no-op.
	gen := m.generation.Load()

	snapshot, err := m.controls.Command(m.operationID, action)
	if err != nil {
		if errors.Is(err, ErrCommandFailed) {
			// A failed command must be inert: surface it, touch nothing.
			m.notify(api.ClientEventType_ControlFailure, "failure", action+" failed for "+m.operationID, err)
		} else {
			// The command landed but the re-sync did not; the next poll tick
			// closes the gap.
			util.Warnf("Monitor - follow-up snapshot after %s failed for %s: %v", action, m.operationID, err)
		}
		return err
	}
	m.applySnapshot(gen, snapshot)
	return nil
}

// applySnapshot feeds a full snapshot through the reducer, flagging count
// invariant violations without correcting or hiding them.
func (m *OperationMonitor) applySnapshot(gen uint64, snapshot api.OperationSnapshot) {
	anomaly := ""
	if err := api.ValidateSnapshot(snapshot); err != nil {
		anomaly = err.Error()
		util.Warnf("Monitor - %s", anomaly)
		m.notify(api.ClientEventType_SnapshotAnomaly, "warning", anomaly, err)
	}
	m.apply(gen, viewUpdate{
		source:     UpdateSource_Poll,
		snapshot:   &snapshot,
		anomaly:    anomaly,
		observedAt: time.Now(),
	})
}

func (m *OperationMonitor) applyStreamEvent(gen uint64, record api.EventRecord) {
	switch record.Type {
	case api.EventType_OperationProgress, api.EventType_OperationComplete:
	default:
		// Logs, test results and unknown kinds live in the buffer only; they
		// carry no view model fields.
		return
	}
	m.apply(gen, viewUpdate{
		source:     UpdateSource_Stream,
		event:      &record,
		observedAt: record.ReceivedAt,
	})
}

func (m *OperationMonitor) apply(gen uint64, update viewUpdate) {
	m.mu.Lock()
	if !m.observing || m.generation.Load() != gen {
		// Stale callback from a torn-down observation.
		m.mu.Unlock()
		return
	}
	wasSettled := m.view.Settled
	m.view = applyUpdate(m.view, update)
	settled := m.view.Settled
	poller := m.poller
	m.mu.Unlock()

	if settled && !wasSettled {
		// Nothing left in flight: polling is pointless, but the stream stays
		// open so trailing completion events are not lost to a race.
		util.Infof("Monitor - %s settled, stopping poller", m.operationID)
		poller.Stop()
		m.notify(api.ClientEventType_OperationSettled, "info", m.operationID, nil)
	}
}

func (m *OperationMonitor) notify(eventType api.ClientEventType, status string, message string, err error) {
	if m.options.ClientEventHandler == nil {
		return
	}
	select {
	case m.options.ClientEventHandler <- api.ClientEvent{
		EventType: eventType,
		EventData: message,
		Status:    status,
		Error:     err,
	}:
	default:
	}
}
