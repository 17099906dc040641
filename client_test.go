package sweepmon

import (
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweepmon/go-monitor-sdk/api"
)

func TestNewClient_RequiresBaseURI(t *testing.T) {
	_, err := NewClient(&Options{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestClient_Launch(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpLaunchMock(test_operationID, 201)

	client, err := NewClient(testOptions())
	require.NoError(t, err)
	defer client.Close()

	operationID, err := client.Launch(api.SweepConfig{
		Models:      []string{"claude-3-haiku", "gpt-4o-mini"},
		Concurrency: 4,
		Categories:  []string{"deception", "fairness"},
	})
	require.NoError(t, err)
	assert.Equal(t, test_operationID, operationID)
}

func TestClient_LaunchRejectsInvalidConfig(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpLaunchMock(test_operationID, 201)

	client, err := NewClient(testOptions())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Launch(api.SweepConfig{Concurrency: 4})
	require.Error(t, err)
	// Invalid configs never reach the wire.
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestClient_ObserveOperationReusesMonitor(t *testing.T) {
	client, err := NewClient(testOptions())
	require.NoError(t, err)
	defer client.Close()

	first, err := client.ObserveOperation(test_operationID)
	require.NoError(t, err)
	second, err := client.ObserveOperation(test_operationID)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := client.ObserveOperation("op_other")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, err = client.ObserveOperation("")
	assert.Error(t, err)
}

func TestClient_MonitorsAreIndependent(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpSnapshotMock("op_a", 200, snapshotCounts("op_a", 10, 1, 0, 9, 0, "running"))
	httpSnapshotMock("op_b", 200, snapshotCounts("op_b", 4, 4, 0, 0, 0, "finished"))

	options := testOptions()
	options.DisableStreaming = true
	options.PollingInterval = time.Hour

	client, err := NewClient(options)
	require.NoError(t, err)
	defer client.Close()

	monitorA, err := client.ObserveOperation("op_a")
	require.NoError(t, err)
	monitorB, err := client.ObserveOperation("op_b")
	require.NoError(t, err)

	require.NoError(t, monitorA.BeginObserving())
	require.NoError(t, monitorB.BeginObserving())

	waitFor(t, time.Second, func() bool {
		return monitorA.ViewModel().Seq > 0 && monitorB.ViewModel().Seq > 0
	})

	viewA := monitorA.ViewModel()
	viewB := monitorB.ViewModel()
	assert.Equal(t, "op_a", viewA.Snapshot.OperationID)
	assert.Equal(t, "op_b", viewB.Snapshot.OperationID)
	assert.False(t, viewA.Settled)
	assert.True(t, viewB.Settled)

	// Tearing one down leaves the other observing.
	client.ReleaseOperation("op_a")
	assert.False(t, monitorA.Observing())
	assert.True(t, monitorB.Observing())
}

func TestClient_CloseStopsAllMonitors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpSnapshotMock("op_a", 200, snapshotCounts("op_a", 10, 1, 0, 9, 0, "running"))

	options := testOptions()
	options.DisableStreaming = true
	options.PollingInterval = time.Hour

	client, err := NewClient(options)
	require.NoError(t, err)

	monitor, err := client.ObserveOperation("op_a")
	require.NoError(t, err)
	require.NoError(t, monitor.BeginObserving())

	client.Close()
	assert.False(t, monitor.Observing())
}

func TestClient_SnapshotWithoutObserving(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpSnapshotMock(test_operationID, 200, test_snapshotBody)

	client, err := NewClient(testOptions())
	require.NoError(t, err)
	defer client.Close()

	snapshot, err := client.Snapshot(test_operationID)
	require.NoError(t, err)
	assert.Equal(t, 10, snapshot.Total)
}
