package sweepmon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
)

var test_options = &Options{
	APIBaseURI:      "https://bench.test",
	PollingInterval: time.Second,
	RequestTimeout:  5 * time.Second,
}

const test_operationID = "op_8f2c41d7"

const test_snapshotBody = `{
	"operation_id": "op_8f2c41d7",
	"total": 10,
	"completed": 3,
	"failed": 0,
	"pending": 6,
	"running": 1,
	"control_status": "running",
	"units": [
		{"id": "claude-3-haiku", "status": "completed", "progress_numerator": 5, "progress_denominator": 5, "result_summary": {"accuracy": 0.84}},
		{"id": "gpt-4o-mini", "status": "running", "progress_numerator": 2, "progress_denominator": 5}
	],
	"aggregates": {"overall_accuracy": 0.84}
}`

func testOptions() *Options {
	o := *test_options
	o.CheckDefaults()
	return &o
}

func snapshotURL(operationID string) string {
	return fmt.Sprintf("%s/v1/operations/%s", test_options.APIBaseURI, operationID)
}

func httpSnapshotMock(operationID string, respcode int, body string) {
	httpmock.RegisterResponder("GET", snapshotURL(operationID),
		httpmock.NewStringResponder(respcode, body))
}

func httpSnapshotSequenceMock(operationID string, bodies ...string) {
	i := 0
	httpmock.RegisterResponder("GET", snapshotURL(operationID),
		func(req *http.Request) (*http.Response, error) {
			body := bodies[len(bodies)-1]
			if i < len(bodies) {
				body = bodies[i]
				i++
			}
			return httpmock.NewStringResponse(200, body), nil
		},
	)
}

func httpControlMock(operationID string, action string, respcode int) {
	httpmock.RegisterResponder("POST", snapshotURL(operationID)+"/"+action,
		httpmock.NewStringResponder(respcode, `{"accepted": true}`))
}

func httpLaunchMock(operationID string, respcode int) {
	httpmock.RegisterResponder("POST", test_options.APIBaseURI+"/v1/operations",
		httpmock.NewStringResponder(respcode, fmt.Sprintf(`{"operation_id": %q}`, operationID)))
}

// snapshotCounts is shorthand for building snapshot JSON in tests.
func snapshotCounts(operationID string, total, completed, failed, pending, running int, status string) string {
	return fmt.Sprintf(`{
		"operation_id": %q,
		"total": %d,
		"completed": %d,
		"failed": %d,
		"pending": %d,
		"running": %d,
		"control_status": %q
	}`, operationID, total, completed, failed, pending, running, status)
}
