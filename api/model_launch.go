package api

// SweepConfig is the body of a launch request. Validated client-side before
// it is posted so an operator gets an immediate error instead of a 400.
type SweepConfig struct {
	Models      []string `json:"models" validate:"required,min=1,dive,required"`
	Concurrency int      `json:"concurrency" validate:"min=1,max=32"`
	Categories  []string `json:"categories,omitempty"`
	JudgeModel  string   `json:"judge_model,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

// LaunchResponse carries the id of the newly created operation, the argument
// to Client.ObserveOperation.
type LaunchResponse struct {
	OperationID string `json:"operation_id"`
}
