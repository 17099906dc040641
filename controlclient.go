package sweepmon

import (
	"errors"
	"fmt"

	"github.com/sweepmon/go-monitor-sdk/api"
)

// ErrCommandFailed marks a control command the server rejected or that never
// reached it. Callers distinguish it from a failed follow-up fetch: a failed
// command changed nothing, a failed follow-up just means the refresh is late.
var ErrCommandFailed = errors.New("control command failed")

// ControlClient issues pause/resume/cancel commands. Commands are never
// trusted to have succeeded: every accepted command is followed by a fresh
// snapshot fetch, and only that snapshot is fed back into the view model.
// The command response body may not match the canonical snapshot format and
// a command can partially fail server-side.
type ControlClient struct {
	snapshots *SnapshotClient
}

func NewControlClient(snapshots *SnapshotClient) *ControlClient {
	return &ControlClient{snapshots: snapshots}
}

// Pause requests a pause and returns the post-command snapshot.
func (c *ControlClient) Pause(operationID string) (api.OperationSnapshot, error) {
	return c.Command(operationID, "pause")
}

// Resume requests a resume and returns the post-command snapshot.
func (c *ControlClient) Resume(operationID string) (api.OperationSnapshot, error) {
	return c.Command(operationID, "resume")
}

// Cancel requests a cancel and returns the post-command snapshot.
func (c *ControlClient) Cancel(operationID string) (api.OperationSnapshot, error) {
	return c.Command(operationID, "cancel")
}

// Command sends one control action and re-synchronizes. Errors wrapping
// ErrCommandFailed mean the command itself failed; any other error means the
// command was accepted but the follow-up snapshot fetch was not.
func (c *ControlClient) Command(operationID string, action string) (api.OperationSnapshot, error) {
	if err := c.snapshots.SendControl(operationID, action); err != nil {
		return api.OperationSnapshot{}, fmt.Errorf("%w: %s", ErrCommandFailed, err)
	}
	return c.snapshots.FetchSnapshot(operationID)
}
