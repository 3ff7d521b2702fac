package eventbus

import (
	"time"

	"github.com/jcabrerapy/concilia-be/internal/recon"
)

type EventType string

const (
	EventTypeRun EventType = "reconciliation_run"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	Retries   int         `json:"retries"`
}

// RunEvent carries one fully parsed reconciliation tuple. A run is atomic:
// one event, one engine execution, one stored result.
type RunEvent struct {
	RunID  string       `json:"run_id"`
	Inputs recon.Inputs `json:"inputs"`
}
