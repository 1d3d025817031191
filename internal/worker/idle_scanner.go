package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/store"
)

// ClassificationRequester submits a classification request into the
// pipeline. Implemented by the collector; fire-and-forget.
type ClassificationRequester interface {
	RequestClassification(ctx context.Context, req domain.ClassificationRequest)
}

// ScannerConfig tunes the idle-session scanner.
type ScannerConfig struct {
	// Interval between scans.
	Interval time.Duration
	// IdleThreshold is how long a session must be inactive to qualify.
	IdleThreshold time.Duration
	// MaxSessions caps candidates per scan.
	MaxSessions int
	// MinMessages is the minimum transcript length worth classifying.
	MinMessages int
	// TranscriptLimit bounds how many messages are fetched per session.
	TranscriptLimit int
}

// IdleScanner finds conversations that went quiet without explicit closure
// and submits them for classification. Sessions that already received an
// auto-generated feedback row are excluded by the store query, so a
// session is never classified twice by this path.
type IdleScanner struct {
	gateway   store.Gateway
	requester ClassificationRequester
	config    ScannerConfig
	log       *zap.Logger
}

// NewIdleScanner creates the scanner loop. Unset config fields get the
// standard defaults.
func NewIdleScanner(gateway store.Gateway, requester ClassificationRequester, config ScannerConfig, log *zap.Logger) *IdleScanner {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.IdleThreshold <= 0 {
		config.IdleThreshold = 15 * time.Minute
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = 10
	}
	if config.MinMessages <= 0 {
		config.MinMessages = 3
	}
	if config.TranscriptLimit <= 0 {
		config.TranscriptLimit = 20
	}

	return &IdleScanner{
		gateway:   gateway,
		requester: requester,
		config:    config,
		log:       log,
	}
}

// Run loops until ctx is cancelled.
func (s *IdleScanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.log.Info("Idle-session scanner started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("idle_threshold", s.config.IdleThreshold))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Idle-session scanner shutting down")
			return nil
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan runs one pass: collect candidates, fetch transcripts, submit
// qualifying sessions. Failures affect only the current candidate.
func (s *IdleScanner) Scan(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.IdleThreshold)

	sessions, err := s.gateway.ListIdleSessions(ctx, cutoff, s.config.MaxSessions)
	if err != nil {
		s.log.Error("Failed to list idle sessions", zap.Error(err))
		return
	}
	if len(sessions) == 0 {
		return
	}

	submitted := 0
	for _, session := range sessions {
		messages, err := s.gateway.ListSessionMessages(ctx, session.SessionID, s.config.TranscriptLimit)
		if err != nil {
			s.log.Error("Failed to load session transcript",
				zap.String("session_id", session.SessionID),
				zap.Error(err))
			continue
		}

		if len(messages) < s.config.MinMessages {
			continue
		}

		transcript := make([]domain.TranscriptMessage, 0, len(messages))
		for _, msg := range messages {
			transcript = append(transcript, domain.TranscriptMessage{
				Sender:    msg.Sender,
				Content:   msg.Content,
				Timestamp: msg.CreatedAt,
				Metadata:  msg.Metadata,
			})
		}

		s.requester.RequestClassification(ctx, domain.ClassificationRequest{
			RequestID:     uuid.NewString(),
			SessionID:     session.SessionID,
			Messages:      transcript,
			TotalMessages: len(messages),
			TriggerReason: domain.TriggerInactivityTimeout,
			UserID:        "auto_timeout",
			AgentID:       session.AgentID,
			TeamID:        session.TeamID,
			Timestamp:     time.Now(),
		})
		submitted++

		s.log.Info("Idle session submitted for classification",
			zap.String("session_id", session.SessionID),
			zap.Time("inactive_since", session.LastActivity))
	}

	if submitted > 0 {
		s.log.Info("Idle scan finished",
			zap.Int("candidates", len(sessions)),
			zap.Int("submitted", submitted))
	}
}
