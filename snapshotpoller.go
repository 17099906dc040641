package sweepmon

import (
	"sync"
	"time"

	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

// terminalTicksToStop is how many consecutive terminal snapshots the poller
// requires before it stops itself. A single read can be stale or racy; two
// in a row are trusted.
const terminalTicksToStop = 2

// SnapshotPoller periodically fetches an operation's snapshot and forwards
// it to onSnapshot. Failed ticks are skipped silently and retried on the
// next interval; transient fetch errors are expected and never end polling.
type SnapshotPoller struct {
	operationID string
	snapshots   *SnapshotClient
	onSnapshot  func(api.OperationSnapshot)

	mu      sync.Mutex
	ticker  *time.Ticker
	stop    chan struct{}
	running bool

	terminalStreak int
}

func NewSnapshotPoller(operationID string, snapshots *SnapshotClient, onSnapshot func(api.OperationSnapshot)) *SnapshotPoller {
	return &SnapshotPoller{
		operationID: operationID,
		snapshots:   snapshots,
		onSnapshot:  onSnapshot,
	}
}

// Start begins polling at the given interval. The first fetch happens
// immediately so observers get a ground-truth baseline without waiting a
// full interval. Calling Start on a running poller is a no-op.
func (p *SnapshotPoller) Start(interval time.Duration) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.terminalStreak = 0
	p.ticker = time.NewTicker(interval)
	p.stop = make(chan struct{})
	stop := p.stop
	ticker := p.ticker
	p.mu.Unlock()

	go func() {
		p.tick()
		for {
			select {
			case <-stop:
				ticker.Stop()
				util.Debugf("Poller - stopped for %s", p.operationID)
				return
			case <-ticker.C:
				// stop and ticker can both be ready; never tick after Stop.
				if !p.Running() {
					ticker.Stop()
					return
				}
				p.tick()
			}
		}
	}()
}

// Stop ends polling. Safe to call repeatedly or on a never-started poller.
func (p *SnapshotPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stop)
}

// Running reports whether the poll loop is active.
func (p *SnapshotPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SnapshotPoller) tick() {
	snapshot, err := p.snapshots.FetchSnapshot(p.operationID)
	if err != nil {
		// Skipped tick; the next interval retries.
		util.Warnf("Poller - fetch failed for %s: %v", p.operationID, err)
		return
	}

	p.onSnapshot(snapshot)

	if snapshot.ControlStatus.Terminal() {
		p.mu.Lock()
		p.terminalStreak++
		streak := p.terminalStreak
		p.mu.Unlock()
		if streak >= terminalTicksToStop {
			util.Infof("Poller - %s reported %s twice, stopping", p.operationID, snapshot.ControlStatus)
			p.Stop()
		}
		return
	}

	p.mu.Lock()
	p.terminalStreak = 0
	p.mu.Unlock()
}
