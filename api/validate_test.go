package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func consistentSnapshot() OperationSnapshot {
	return OperationSnapshot{
		OperationID:   "op_1",
		Total:         10,
		Completed:     3,
		Failed:        1,
		Pending:       5,
		Running:       1,
		ControlStatus: ControlStatus_Running,
	}
}

func TestValidateSnapshot_Consistent(t *testing.T) {
	assert.NoError(t, ValidateSnapshot(consistentSnapshot()))
}

func TestValidateSnapshot_CountMismatchFlagged(t *testing.T) {
	s := consistentSnapshot()
	s.Completed = 4 // sums to 11, total stays 10
	err := ValidateSnapshot(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "op_1")
}

func TestValidateSnapshot_UnknownControlStatus(t *testing.T) {
	s := consistentSnapshot()
	s.ControlStatus = "hibernating"
	assert.Error(t, ValidateSnapshot(s))
}

func TestValidateSweepConfig(t *testing.T) {
	valid := SweepConfig{
		Models:      []string{"claude-3-haiku", "gpt-4o-mini"},
		Concurrency: 4,
	}
	assert.NoError(t, ValidateSweepConfig(valid))

	noModels := valid
	noModels.Models = nil
	assert.Error(t, ValidateSweepConfig(noModels))

	blankModel := valid
	blankModel.Models = []string{"claude-3-haiku", ""}
	assert.Error(t, ValidateSweepConfig(blankModel))

	tooWide := valid
	tooWide.Concurrency = 512
	assert.Error(t, ValidateSweepConfig(tooWide))
}

func TestControlStatus_Terminal(t *testing.T) {
	assert.True(t, ControlStatus_Cancelled.Terminal())
	assert.True(t, ControlStatus_Finished.Terminal())
	assert.False(t, ControlStatus_Running.Terminal())
	assert.False(t, ControlStatus_Paused.Terminal())
	assert.False(t, ControlStatus_Queued.Terminal())
}

func TestOperationSnapshot_Settled(t *testing.T) {
	s := consistentSnapshot()
	assert.False(t, s.Settled())

	s.Completed, s.Failed, s.Pending, s.Running = 9, 1, 0, 0
	assert.True(t, s.Settled())

	// A zero-value snapshot is not settled, it is just empty.
	assert.False(t, OperationSnapshot{}.Settled())
}
