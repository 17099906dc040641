package sweepmon

import (
	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
)

type EventRecord = api.EventRecord
type EventType = api.EventType
type OperationSnapshot = api.OperationSnapshot
type UnitStatus = api.UnitStatus
type ControlStatus = api.ControlStatus
type SweepConfig = api.SweepConfig
type ClientEvent = api.ClientEvent
type ClientEventType = api.ClientEventType
type Logger = util.Logger
type DiscardLogger = util.DiscardLogger

func SetLogger(log Logger) { util.SetLogger(log) }
