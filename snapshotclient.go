package sweepmon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/matryer/try"
	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

// maxFetchAttempts bounds the in-call retry on 5xx responses. Anything still
// failing after that is left to the next poll tick.
const maxFetchAttempts = 2

// SnapshotClient performs the REST calls against the benchmark engine:
// snapshot GETs, control POSTs and sweep launches. It holds no per-operation
// state and is shared by every monitor a Client creates.
type SnapshotClient struct {
	cfg *HTTPConfiguration
}

func NewSnapshotClient(cfg *HTTPConfiguration) *SnapshotClient {
	return &SnapshotClient{cfg: cfg}
}

func (c *SnapshotClient) operationURL(operationID string) string {
	return fmt.Sprintf("%s/v1/operations/%s", c.cfg.BasePath, operationID)
}

// FetchSnapshot gets the authoritative point-in-time state of an operation.
// 5xx responses are retried once within the call; any other failure is
// returned to the caller, which treats it as transient.
func (c *SnapshotClient) FetchSnapshot(operationID string) (snapshot api.OperationSnapshot, err error) {
	err = try.Do(func(attempt int) (bool, error) {
		retryable := attempt < maxFetchAttempts

		req, reqErr := http.NewRequest(http.MethodGet, c.operationURL(operationID), nil)
		if reqErr != nil {
			return false, reqErr
		}
		c.applyHeaders(req)

		resp, doErr := c.cfg.HTTPClient.Do(req)
		if doErr != nil {
			return false, doErr
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return false, readErr
			}
			if jsonErr := json.Unmarshal(body, &snapshot); jsonErr != nil {
				return false, fmt.Errorf("malformed snapshot for %s: %w", operationID, jsonErr)
			}
			return false, nil
		case resp.StatusCode >= 500:
			if retryable {
				util.Warnf("Retrying snapshot fetch for %s. Status: %s", operationID, resp.Status)
			}
			return retryable, fmt.Errorf("snapshot fetch for %s failed: %s", operationID, resp.Status)
		default:
			return false, fmt.Errorf("unexpected response code %d fetching snapshot for %s", resp.StatusCode, operationID)
		}
	})
	return snapshot, err
}

// SendControl posts a pause/resume/cancel command. Only the status code is
// read; the response body is deliberately ignored because the command
// response format is not the canonical snapshot format.
func (c *SnapshotClient) SendControl(operationID string, action string) error {
	req, err := http.NewRequest(http.MethodPost, c.operationURL(operationID)+"/"+action, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s command for %s failed: %w", action, operationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s command for %s rejected: %s", action, operationID, resp.Status)
	}
	return nil
}

// Launch starts a new sweep and returns the operation id to observe.
func (c *SnapshotClient) Launch(config api.SweepConfig) (string, error) {
	if err := api.ValidateSweepConfig(config); err != nil {
		return "", err
	}

	body, err := json.Marshal(config)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.BasePath+"/v1/operations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.applyHeaders(req)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("launch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("launch rejected: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var launched api.LaunchResponse
	if err = json.Unmarshal(raw, &launched); err != nil {
		return "", fmt.Errorf("malformed launch response: %w", err)
	}
	if launched.OperationID == "" {
		return "", fmt.Errorf("launch response missing operation_id")
	}
	return launched.OperationID, nil
}

func (c *SnapshotClient) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	for key, value := range c.cfg.DefaultHeader {
		req.Header.Set(key, value)
	}
}
