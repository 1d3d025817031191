package dto

import "time"

// CollectExecutionRequest reports one agent execution.
type CollectExecutionRequest struct {
	AgentID         int       `json:"agent_id" binding:"required"`
	AgentName       string    `json:"agent_name"`
	SessionID       string    `json:"session_id"`
	Model           string    `json:"model" binding:"required"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	InputText       string    `json:"input_text"`
	OutputText      string    `json:"output_text"`
	InputTokens     int       `json:"input_tokens"`
	OutputTokens    int       `json:"output_tokens"`
	CostEstimate    float64   `json:"cost_estimate"`
	ToolsUsed       []string  `json:"tools_used"`
	Success         bool      `json:"success"`
	OperationType   string    `json:"operation_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// CollectContentRequest submits one message body for topic analysis.
type CollectContentRequest struct {
	ContentID      string `json:"content_id"`
	ContentType    string `json:"content_type"`
	MessageContent string `json:"message_content" binding:"required"`
	AgentID        int    `json:"agent_id"`
	AgentName      string `json:"agent_name"`
	SessionID      string `json:"session_id" binding:"required"`
}

// CollectSessionRequest reports chat session activity.
type CollectSessionRequest struct {
	SessionID       string    `json:"session_id" binding:"required"`
	UserID          string    `json:"user_id" binding:"required"`
	AgentID         int       `json:"agent_id"`
	TeamID          int       `json:"team_id"`
	MessageCount    int       `json:"message_count"`
	DurationSeconds int       `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// TranscriptMessage is one conversation entry of a classification request.
type TranscriptMessage struct {
	Sender    string         `json:"sender" binding:"required"`
	Content   string         `json:"content" binding:"required"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// RequestClassificationRequest submits a transcript for classification.
type RequestClassificationRequest struct {
	SessionID     string              `json:"session_id" binding:"required"`
	Messages      []TranscriptMessage `json:"messages" binding:"required,min=1,dive"`
	TotalMessages int                 `json:"total_messages"`
	TriggerReason string              `json:"trigger_reason"`
	UserID        string              `json:"user_id"`
	AgentID       int                 `json:"agent_id"`
	TeamID        int                 `json:"team_id"`
}
