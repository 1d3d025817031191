package classifier

import (
	"context"
	"errors"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
)

// ErrMalformedResult marks engine output that could not be parsed into a
// Result. The classification worker logs and drops on this error; there is
// no retry.
var ErrMalformedResult = errors.New("classifier: malformed engine result")

// Result is the structured analysis of one conversation.
type Result struct {
	Topics       []string `json:"topics"`
	Sentiment    string   `json:"sentiment"`
	Satisfaction int      `json:"satisfaction"` // 1-5
	Category     string   `json:"category"`
	Complexity   string   `json:"complexity"`
	Keywords     []string `json:"keywords"`
	Summary      string   `json:"summary"`
}

// Engine analyzes a conversation transcript. How the answer is derived is
// outside this pipeline; implementations only honor this contract.
type Engine interface {
	Classify(ctx context.Context, sessionID string, transcript []domain.TranscriptMessage) (*Result, error)
}
