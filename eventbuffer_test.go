package sweepmon

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweepmon/go-monitor-sdk/api"
)

func logRecord(i int) api.EventRecord {
	return api.EventRecord{
		Type:       api.EventType_Log,
		ReceivedAt: time.Now(),
		Data:       map[string]interface{}{"seq": i},
	}
}

func TestEventBuffer_EvictsOldestAtCapacity(t *testing.T) {
	buffer := NewEventBuffer(5)

	for i := 0; i < 12; i++ {
		buffer.Append(logRecord(i))
	}

	records := buffer.Snapshot()
	require.Len(t, records, 5)
	for i, record := range records {
		seq, ok := record.IntField("seq")
		require.True(t, ok)
		// The last 5 appended, in arrival order.
		assert.Equal(t, 7+i, seq)
	}
}

func TestEventBuffer_SnapshotIsRestartable(t *testing.T) {
	buffer := NewEventBuffer(10)
	for i := 0; i < 4; i++ {
		buffer.Append(logRecord(i))
	}

	first := buffer.Snapshot()
	second := buffer.Snapshot()
	assert.Equal(t, first, second)

	// Mutating a returned slice must not touch the buffer.
	first[1] = api.EventRecord{Type: api.EventType_Error}
	third := buffer.Snapshot()
	assert.Equal(t, api.EventType_Log, third[1].Type)
}

func TestEventBuffer_FilterIsNonDestructive(t *testing.T) {
	buffer := NewEventBuffer(50)
	for i := 0; i < 10; i++ {
		record := logRecord(i)
		if i%2 == 0 {
			record.Type = api.EventType_OperationProgress
		}
		buffer.Append(record)
	}

	isLog := func(r api.EventRecord) bool { return r.Type == api.EventType_Log }
	isProgress := func(r api.EventRecord) bool { return r.Type == api.EventType_OperationProgress }

	logsBefore := buffer.Filtered(isLog)
	progress := buffer.Filtered(isProgress)
	logsAfter := buffer.Filtered(isLog)

	assert.Len(t, progress, 5)
	assert.Equal(t, logsBefore, logsAfter)
	assert.Equal(t, 10, buffer.Len())
}

func TestEventBuffer_FilteredByTypePrefix(t *testing.T) {
	buffer := NewEventBuffer(20)
	for _, eventType := range []api.EventType{
		api.EventType_OperationStart,
		api.EventType_Log,
		api.EventType_OperationProgress,
		api.EventType_OperationComplete,
		api.EventType_Status,
	} {
		buffer.Append(api.EventRecord{Type: eventType})
	}

	family := buffer.FilteredByType("operation")
	require.Len(t, family, 3)
	assert.Equal(t, api.EventType_OperationStart, family[0].Type)
	assert.Equal(t, api.EventType_OperationProgress, family[1].Type)
	assert.Equal(t, api.EventType_OperationComplete, family[2].Type)

	exact := buffer.FilteredByType("log")
	require.Len(t, exact, 1)

	// "operation_c" is not a full type and not a family prefix.
	assert.Empty(t, buffer.FilteredByType("operation_c"))
}

func TestEventBuffer_Clear(t *testing.T) {
	buffer := NewEventBuffer(5)
	for i := 0; i < 8; i++ {
		buffer.Append(logRecord(i))
	}

	buffer.Clear()
	assert.Zero(t, buffer.Len())
	assert.Empty(t, buffer.Snapshot())

	// Still usable after clear.
	buffer.Append(logRecord(42))
	records := buffer.Snapshot()
	require.Len(t, records, 1)
	seq, _ := records[0].IntField("seq")
	assert.Equal(t, 42, seq)
}

func TestEventBuffer_ArrivalOrderProperty(t *testing.T) {
	for _, capacity := range []int{1, 2, 7, 200} {
		for _, appends := range []int{0, 1, 5, 7, 8, 250} {
			buffer := NewEventBuffer(capacity)
			for i := 0; i < appends; i++ {
				buffer.Append(logRecord(i))
			}

			records := buffer.Snapshot()
			expected := appends
			if expected > capacity {
				expected = capacity
			}
			require.Len(t, records, expected,
				fmt.Sprintf("capacity=%d appends=%d", capacity, appends))
			for i, record := range records {
				seq, _ := record.IntField("seq")
				require.Equal(t, appends-expected+i, seq)
			}
		}
	}
}
