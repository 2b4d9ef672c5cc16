package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrOrchestratorStopped = fmt.Errorf("orchestrator stopped")
	ErrSinkClosed          = fmt.Errorf("sink closed")
	ErrSinkFull            = fmt.Errorf("sink buffer full")
	ErrInvalidFrame        = fmt.Errorf("invalid frame")
	ErrUnknownEvent        = fmt.Errorf("unknown event")
	ErrInvalidConfig       = fmt.Errorf("invalid configuration")
)
