package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateSnapshotCounts, OperationSnapshot{})
	return v
}

func validateSnapshotCounts(sl validator.StructLevel) {
	s := sl.Current().Interface().(OperationSnapshot)
	if !s.CountsConsistent() {
		sl.ReportError(s.Total, "Total", "total", "countsum", "")
	}
}

// ValidateSweepConfig checks a launch config before it is sent.
func ValidateSweepConfig(cfg SweepConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid sweep config: %w", err)
	}
	return nil
}

// ValidateSnapshot checks a fetched snapshot against the count invariant and
// the control status vocabulary. A non-nil error flags the snapshot as
// anomalous; callers still apply it to the view model.
func ValidateSnapshot(s OperationSnapshot) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("inconsistent snapshot for %s (completed=%d failed=%d pending=%d running=%d total=%d): %w",
			s.OperationID, s.Completed, s.Failed, s.Pending, s.Running, s.Total, err)
	}
	return nil
}
