package api

// ControlStatus is the server-side lifecycle state of a sweep operation.
type ControlStatus string

const (
	ControlStatus_Queued    ControlStatus = "queued"
	ControlStatus_Running   ControlStatus = "running"
	ControlStatus_Paused    ControlStatus = "paused"
	ControlStatus_Cancelled ControlStatus = "cancelled"
	ControlStatus_Finished  ControlStatus = "finished"
)

// Terminal reports whether the status means the operation will never emit
// further progress.
func (s ControlStatus) Terminal() bool {
	return s == ControlStatus_Cancelled || s == ControlStatus_Finished
}

// UnitState is the lifecycle state of one model run inside a sweep.
type UnitState string

const (
	UnitState_Queued    UnitState = "queued"
	UnitState_Running   UnitState = "running"
	UnitState_Completed UnitState = "completed"
	UnitState_Failed    UnitState = "failed"
)

// UnitStatus is the per-model slice of an operation snapshot.
type UnitStatus struct {
	ID                  string                 `json:"id"`
	Status              UnitState              `json:"status"`
	ProgressNumerator   int                    `json:"progress_numerator"`
	ProgressDenominator int                    `json:"progress_denominator"`
	ResultSummary       map[string]interface{} `json:"result_summary,omitempty"`
	Error               string                 `json:"error,omitempty"`
}

// OperationSnapshot is the authoritative point-in-time state of a sweep as
// reported by the snapshot endpoint. The counts must satisfy
// completed + failed + pending + running == total; a snapshot that does not
// is a server bug and is surfaced as an anomaly rather than corrected.
type OperationSnapshot struct {
	OperationID   string        `json:"operation_id" validate:"required"`
	Total         int           `json:"total" validate:"min=0"`
	Completed     int           `json:"completed" validate:"min=0"`
	Failed        int           `json:"failed" validate:"min=0"`
	Pending       int           `json:"pending" validate:"min=0"`
	Running       int           `json:"running" validate:"min=0"`
	ControlStatus ControlStatus `json:"control_status" validate:"required,oneof=queued running paused cancelled finished"`
	Units         []UnitStatus  `json:"units,omitempty"`
	// Aggregates only the snapshot endpoint computes, e.g. overall accuracy.
	// Opaque to the monitor; the stream never carries these.
	Aggregates map[string]interface{} `json:"aggregates,omitempty"`
}

// CountsConsistent reports whether the snapshot satisfies the count
// invariant.
func (s OperationSnapshot) CountsConsistent() bool {
	return s.Completed+s.Failed+s.Pending+s.Running == s.Total
}

// Settled reports whether the work counters show nothing left in flight.
// This is the terminal test used by the monitor, independent of
// ControlStatus, so a stream that never carries control_status can still
// settle the view.
func (s OperationSnapshot) Settled() bool {
	return s.Total > 0 && s.Pending == 0 && s.Running == 0
}
