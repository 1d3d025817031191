package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies which pipeline a metric event belongs to. Each
// category has its own broker list and its own worker loop.
type Category string

const (
	CategoryExecution      Category = "execution"
	CategoryContent        Category = "content"
	CategorySession        Category = "session"
	CategoryClassification Category = "classification"
)

// Categories lists every pipeline category in a stable order.
var Categories = []Category{
	CategoryExecution,
	CategoryContent,
	CategorySession,
	CategoryClassification,
}

// QueueName returns the broker list key for this category.
func (c Category) QueueName() string {
	return "metrics:" + string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryExecution, CategoryContent, CategorySession, CategoryClassification:
		return true
	}
	return false
}

// ExecutionEvent records a single agent execution: timings, token counts
// and text samples. Token counts and cost may be zero on arrival; the
// collector fills them in before the event is enqueued.
type ExecutionEvent struct {
	AgentID         int       `json:"agent_id"`
	AgentName       string    `json:"agent_name,omitempty"`
	SessionID       string    `json:"session_id"`
	Model           string    `json:"model"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	InputText       string    `json:"input_text,omitempty"`
	OutputText      string    `json:"output_text,omitempty"`
	InputTokens     int       `json:"input_tokens,omitempty"`
	OutputTokens    int       `json:"output_tokens,omitempty"`
	CostEstimate    float64   `json:"cost_estimate,omitempty"`
	ToolsUsed       []string  `json:"tools_used,omitempty"`
	Success         bool      `json:"success"`
	OperationType   string    `json:"operation_type,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ContentEvent carries one message body for topic extraction.
type ContentEvent struct {
	ContentID      string    `json:"content_id,omitempty"`
	ContentType    string    `json:"content_type,omitempty"`
	SessionID      string    `json:"session_id"`
	AgentID        int       `json:"agent_id,omitempty"`
	AgentName      string    `json:"agent_name,omitempty"`
	MessageContent string    `json:"message_content"`
	Timestamp      time.Time `json:"timestamp"`
}

// SessionEvent records chat session activity for the user aggregate and
// the in-process activity cache.
type SessionEvent struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	AgentID         int       `json:"agent_id,omitempty"`
	TeamID          int       `json:"team_id,omitempty"`
	MessageCount    int       `json:"message_count"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// TranscriptMessage is one entry of an ordered conversation transcript.
type TranscriptMessage struct {
	Sender    string         `json:"sender"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ClassificationRequest asks the classification engine to analyze a full
// conversation transcript.
type ClassificationRequest struct {
	RequestID     string              `json:"request_id"`
	SessionID     string              `json:"session_id"`
	Messages      []TranscriptMessage `json:"messages"`
	TotalMessages int                 `json:"total_messages"`
	TriggerReason string              `json:"trigger_reason"`
	UserID        string              `json:"user_id,omitempty"`
	AgentID       int                 `json:"agent_id,omitempty"`
	TeamID        int                 `json:"team_id,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// TriggerInactivityTimeout marks classification requests issued by the
// idle-session scanner.
const TriggerInactivityTimeout = "inactivity_timeout"

// Event is the tagged union over the four metric variants. Exactly one of
// the variant pointers is non-nil, matching Category. Events are immutable
// once built; they are consumed and discarded after persistence.
type Event struct {
	Category       Category
	Execution      *ExecutionEvent
	Content        *ContentEvent
	Session        *SessionEvent
	Classification *ClassificationRequest
}

// NewExecutionEvent wraps an execution variant.
func NewExecutionEvent(e ExecutionEvent) *Event {
	return &Event{Category: CategoryExecution, Execution: &e}
}

// NewContentEvent wraps a content variant.
func NewContentEvent(e ContentEvent) *Event {
	return &Event{Category: CategoryContent, Content: &e}
}

// NewSessionEvent wraps a session variant.
func NewSessionEvent(e SessionEvent) *Event {
	return &Event{Category: CategorySession, Session: &e}
}

// NewClassificationRequest wraps a classification variant.
func NewClassificationRequest(r ClassificationRequest) *Event {
	return &Event{Category: CategoryClassification, Classification: &r}
}

// Payload serializes the active variant for the broker envelope.
func (e *Event) Payload() ([]byte, error) {
	switch e.Category {
	case CategoryExecution:
		return json.Marshal(e.Execution)
	case CategoryContent:
		return json.Marshal(e.Content)
	case CategorySession:
		return json.Marshal(e.Session)
	case CategoryClassification:
		return json.Marshal(e.Classification)
	}
	return nil, fmt.Errorf("unknown event category: %q", e.Category)
}

// SessionID returns the session the event belongs to, for logging.
func (e *Event) SessionID() string {
	switch e.Category {
	case CategoryExecution:
		return e.Execution.SessionID
	case CategoryContent:
		return e.Content.SessionID
	case CategorySession:
		return e.Session.SessionID
	case CategoryClassification:
		return e.Classification.SessionID
	}
	return ""
}

// DecodeEvent reconstructs the variant for a category from its broker
// payload. The inverse of Payload.
func DecodeEvent(category Category, payload []byte) (*Event, error) {
	switch category {
	case CategoryExecution:
		var v ExecutionEvent
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode execution event: %w", err)
		}
		return &Event{Category: category, Execution: &v}, nil
	case CategoryContent:
		var v ContentEvent
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode content event: %w", err)
		}
		return &Event{Category: category, Content: &v}, nil
	case CategorySession:
		var v SessionEvent
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode session event: %w", err)
		}
		return &Event{Category: category, Session: &v}, nil
	case CategoryClassification:
		var v ClassificationRequest
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode classification request: %w", err)
		}
		return &Event{Category: category, Classification: &v}, nil
	}
	return nil, fmt.Errorf("unknown event category: %q", category)
}
