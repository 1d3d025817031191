package dto

import "time"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AcceptedResponse acknowledges a collected event. Acceptance means the
// event entered the pipeline, not that it was persisted yet.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// RealtimeStatusResponse is the operational snapshot of the pipeline.
type RealtimeStatusResponse struct {
	ActiveSessions  int                  `json:"active_sessions"`
	ActiveUsers     int                  `json:"active_users"`
	BrokerConnected bool                 `json:"broker_connected"`
	Degraded        bool                 `json:"degraded"`
	QueueDepths     map[string]int64     `json:"queue_depths"`
	WorkerLiveness  map[string]time.Time `json:"worker_liveness,omitempty"`
	Timestamp       time.Time            `json:"timestamp"`
}
