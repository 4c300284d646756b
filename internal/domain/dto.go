package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusResponse is returned by the status endpoint while a run is active.
type StatusResponse struct {
	RunID     uuid.UUID `json:"run_id"`
	Phase     string    `json:"phase"`
	Stats     RunStats  `json:"stats"`
	StartedAt time.Time `json:"started_at"`
	Elapsed   string    `json:"elapsed"`
}
