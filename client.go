package sweepmon

import (
	"fmt"
	"sync"

	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

// Client is the entry point of the SDK: it launches sweeps against the
// benchmark engine and hands out one OperationMonitor per observed
// operation. In most dashboards there is one shared Client and any number of
// monitors.
type Client struct {
	options   *Options
	cfg       *HTTPConfiguration
	snapshots *SnapshotClient
	controls  *ControlClient

	mu       sync.Mutex
	monitors map[string]*OperationMonitor
}

// NewClient validates options and builds a client. The API base URI is a
// required explicit input; it is never resolved from the environment here.
func NewClient(options *Options) (*Client, error) {
	if options == nil {
		options = &Options{}
	}
	if options.APIBaseURI == "" {
		return nil, fmt.Errorf("missing APIBaseURI! Call NewClient with the benchmark engine's base URI")
	}
	if options.Logger != nil {
		util.SetLogger(options.Logger)
	}
	options.CheckDefaults()

	cfg := NewConfiguration(options)
	snapshots := NewSnapshotClient(cfg)

	return &Client{
		options:   options,
		cfg:       cfg,
		snapshots: snapshots,
		controls:  NewControlClient(snapshots),
		monitors:  make(map[string]*OperationMonitor),
	}, nil
}

// Launch starts a new sweep and returns its operation id, the argument to
// ObserveOperation.
func (c *Client) Launch(config api.SweepConfig) (string, error) {
	return c.snapshots.Launch(config)
}

// ObserveOperation returns the monitor for an operation id, creating one if
// needed. Each monitor is fully independent; observing two operations at
// once shares nothing but the HTTP configuration.
func (c *Client) ObserveOperation(operationID string) (*OperationMonitor, error) {
	if operationID == "" {
		return nil, fmt.Errorf("missing operation id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if monitor, ok := c.monitors[operationID]; ok {
		return monitor, nil
	}
	monitor := newOperationMonitor(operationID, c.options, c.cfg, c.snapshots, c.controls)
	c.monitors[operationID] = monitor
	return monitor, nil
}

// ReleaseOperation stops observation and forgets the monitor. A later
// ObserveOperation for the same id starts fresh.
func (c *Client) ReleaseOperation(operationID string) {
	c.mu.Lock()
	monitor, ok := c.monitors[operationID]
	delete(c.monitors, operationID)
	c.mu.Unlock()

	if ok {
		monitor.StopObserving()
	}
}

// Snapshot fetches the current state of an operation without observing it.
func (c *Client) Snapshot(operationID string) (api.OperationSnapshot, error) {
	return c.snapshots.FetchSnapshot(operationID)
}

// Close tears down every monitor this client created.
func (c *Client) Close() {
	c.mu.Lock()
	monitors := make([]*OperationMonitor, 0, len(c.monitors))
	for _, monitor := range c.monitors {
		monitors = append(monitors, monitor)
	}
	c.monitors = make(map[string]*OperationMonitor)
	c.mu.Unlock()

	for _, monitor := range monitors {
		monitor.StopObserving()
	}
}
