package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/store"
)

// fakeSessionStore provides just the scanner's read surface plus a flag set
// emulating the auto-generated-feedback exclusion of the real query.
type fakeSessionStore struct {
	MockGateway
	mu         sync.Mutex
	sessions   []store.IdleSession
	messages   map[string][]store.ChatMessage
	classified map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		messages:   make(map[string][]store.ChatMessage),
		classified: make(map[string]bool),
	}
}

func (f *fakeSessionStore) addSession(sessionID string, lastActivity time.Time, messageCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, store.IdleSession{
		SessionID:    sessionID,
		UserID:       "u-" + sessionID,
		LastActivity: lastActivity,
	})
	for i := 0; i < messageCount; i++ {
		f.messages[sessionID] = append(f.messages[sessionID], store.ChatMessage{
			SessionID: sessionID,
			Sender:    "user",
			Content:   "mensagem de teste",
			CreatedAt: lastActivity,
		})
	}
}

func (f *fakeSessionStore) markClassified(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classified[sessionID] = true
}

func (f *fakeSessionStore) ListIdleSessions(ctx context.Context, cutoff time.Time, limit int) ([]store.IdleSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.IdleSession, 0)
	for _, s := range f.sessions {
		if len(out) == limit {
			break
		}
		if s.LastActivity.Before(cutoff) && !f.classified[s.SessionID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListSessionMessages(ctx context.Context, sessionID string, limit int) ([]store.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// recordingRequester captures submitted classification requests.
type recordingRequester struct {
	mu       sync.Mutex
	requests []domain.ClassificationRequest
}

func (r *recordingRequester) RequestClassification(ctx context.Context, req domain.ClassificationRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *recordingRequester) all() []domain.ClassificationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ClassificationRequest(nil), r.requests...)
}

func TestIdleScanner_SubmitsQualifyingSessions(t *testing.T) {
	gw := newFakeSessionStore()
	idle := time.Now().Add(-time.Hour)
	gw.addSession("long-idle", idle, 5)
	gw.addSession("too-short", idle, 2)
	gw.addSession("still-active", time.Now(), 5)

	req := &recordingRequester{}
	scanner := NewIdleScanner(gw, req, ScannerConfig{}, zap.NewNop())
	scanner.Scan(context.Background())

	requests := req.all()
	require.Len(t, requests, 1)
	got := requests[0]
	assert.Equal(t, "long-idle", got.SessionID)
	assert.Equal(t, domain.TriggerInactivityTimeout, got.TriggerReason)
	assert.Equal(t, "auto_timeout", got.UserID)
	assert.Equal(t, 5, got.TotalMessages)
	assert.Len(t, got.Messages, 5)
	assert.NotEmpty(t, got.RequestID)
}

func TestIdleScanner_ClassifiedSessionNotResubmitted(t *testing.T) {
	gw := newFakeSessionStore()
	gw.addSession("idle-1", time.Now().Add(-time.Hour), 4)

	req := &recordingRequester{}
	scanner := NewIdleScanner(gw, req, ScannerConfig{}, zap.NewNop())

	scanner.Scan(context.Background())
	require.Len(t, req.all(), 1)

	// Once the feedback row lands the store query stops returning the
	// session, so repeated scans submit nothing.
	gw.markClassified("idle-1")
	scanner.Scan(context.Background())
	scanner.Scan(context.Background())
	assert.Len(t, req.all(), 1)
}

func TestIdleScanner_CandidateCap(t *testing.T) {
	gw := newFakeSessionStore()
	idle := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		gw.addSession(string(rune('a'+i)), idle, 4)
	}

	req := &recordingRequester{}
	scanner := NewIdleScanner(gw, req, ScannerConfig{}, zap.NewNop())
	scanner.Scan(context.Background())

	assert.Len(t, req.all(), 10)
}

func TestIdleScanner_TranscriptBounded(t *testing.T) {
	gw := newFakeSessionStore()
	gw.addSession("chatty", time.Now().Add(-time.Hour), 50)

	req := &recordingRequester{}
	scanner := NewIdleScanner(gw, req, ScannerConfig{TranscriptLimit: 20}, zap.NewNop())
	scanner.Scan(context.Background())

	requests := req.all()
	require.Len(t, requests, 1)
	assert.Len(t, requests[0].Messages, 20)
}

func TestScannerConfig_Defaults(t *testing.T) {
	s := NewIdleScanner(newFakeSessionStore(), &recordingRequester{}, ScannerConfig{}, zap.NewNop())
	assert.Equal(t, 5*time.Minute, s.config.Interval)
	assert.Equal(t, 15*time.Minute, s.config.IdleThreshold)
	assert.Equal(t, 10, s.config.MaxSessions)
	assert.Equal(t, 3, s.config.MinMessages)
}
