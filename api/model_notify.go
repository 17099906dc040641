package api

// ClientEvent is an out-of-band notification about the monitor itself,
// delivered on the optional Options.ClientEventHandler channel. Dashboards
// use these for the connection badge and the dismissible error banner.
type ClientEvent struct {
	EventType ClientEventType `json:"eventType"`
	EventData interface{}     `json:"eventData"`
	Status    string          `json:"status"`
	Error     error           `json:"error"`
}

type ClientEventType string

const (
	ClientEventType_StreamConnected    ClientEventType = "streamConnected"
	ClientEventType_StreamDisconnected ClientEventType = "streamDisconnected"
	ClientEventType_SnapshotAnomaly    ClientEventType = "snapshotAnomaly"
	ClientEventType_ControlFailure     ClientEventType = "controlFailure"
	ClientEventType_OperationSettled   ClientEventType = "operationSettled"
)
