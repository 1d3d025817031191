package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/collector"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/dto"
)

// StatusReader exposes the pipeline's operational snapshot.
type StatusReader interface {
	Status(ctx context.Context) collector.Status
}

// LivenessFunc reports the last iteration time of each worker loop.
type LivenessFunc func() map[string]time.Time

// Handler is the thin HTTP shell over the ingestion API. Every collect
// endpoint answers 202 immediately; persistence happens downstream.
type Handler struct {
	ingestor collector.Ingestor
	status   StatusReader
	liveness LivenessFunc
	router   *gin.Engine
	log      *zap.Logger
}

// NewHandler wires the routes.
func NewHandler(ingestor collector.Ingestor, status StatusReader, liveness LivenessFunc, log *zap.Logger) *Handler {
	h := &Handler{
		ingestor: ingestor,
		status:   status,
		liveness: liveness,
		router:   gin.Default(),
		log:      log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := h.router.Group("/v1/metrics")
	v1.POST("/execution", h.collectExecution)
	v1.POST("/content", h.collectContent)
	v1.POST("/session", h.collectSession)
	v1.POST("/classification", h.requestClassification)
	v1.GET("/realtime", h.realtimeStatus)
}

// healthCheck handles liveness probes.
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// collectExecution handles POST /v1/metrics/execution.
func (h *Handler) collectExecution(c *gin.Context) {
	var req dto.CollectExecutionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid execution metric request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.ingestor.CollectExecution(c.Request.Context(), domain.ExecutionEvent{
		AgentID:         req.AgentID,
		AgentName:       req.AgentName,
		SessionID:       req.SessionID,
		Model:           req.Model,
		ExecutionTimeMs: req.ExecutionTimeMs,
		InputText:       req.InputText,
		OutputText:      req.OutputText,
		InputTokens:     req.InputTokens,
		OutputTokens:    req.OutputTokens,
		CostEstimate:    req.CostEstimate,
		ToolsUsed:       req.ToolsUsed,
		Success:         req.Success,
		OperationType:   req.OperationType,
		Timestamp:       req.Timestamp,
	})

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// collectContent handles POST /v1/metrics/content.
func (h *Handler) collectContent(c *gin.Context) {
	var req dto.CollectContentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid content metric request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.ingestor.CollectContent(c.Request.Context(), domain.ContentEvent{
		ContentID:      req.ContentID,
		ContentType:    req.ContentType,
		SessionID:      req.SessionID,
		AgentID:        req.AgentID,
		AgentName:      req.AgentName,
		MessageContent: req.MessageContent,
	})

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// collectSession handles POST /v1/metrics/session.
func (h *Handler) collectSession(c *gin.Context) {
	var req dto.CollectSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid session metric request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.ingestor.CollectSession(c.Request.Context(), domain.SessionEvent{
		SessionID:       req.SessionID,
		UserID:          req.UserID,
		AgentID:         req.AgentID,
		TeamID:          req.TeamID,
		MessageCount:    req.MessageCount,
		DurationSeconds: req.DurationSeconds,
		Timestamp:       req.Timestamp,
	})

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// requestClassification handles POST /v1/metrics/classification.
func (h *Handler) requestClassification(c *gin.Context) {
	var req dto.RequestClassificationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid classification request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	messages := make([]domain.TranscriptMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, domain.TranscriptMessage{
			Sender:    msg.Sender,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Metadata:  msg.Metadata,
		})
	}

	h.ingestor.RequestClassification(c.Request.Context(), domain.ClassificationRequest{
		SessionID:     req.SessionID,
		Messages:      messages,
		TotalMessages: req.TotalMessages,
		TriggerReason: req.TriggerReason,
		UserID:        req.UserID,
		AgentID:       req.AgentID,
		TeamID:        req.TeamID,
	})

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// realtimeStatus handles GET /v1/metrics/realtime.
func (h *Handler) realtimeStatus(c *gin.Context) {
	status := h.status.Status(c.Request.Context())

	resp := dto.RealtimeStatusResponse{
		ActiveSessions:  status.ActiveSessions,
		ActiveUsers:     status.ActiveUsers,
		BrokerConnected: status.BrokerConnected,
		Degraded:        status.Degraded,
		QueueDepths:     status.QueueDepths,
		Timestamp:       status.Timestamp,
	}
	if h.liveness != nil {
		resp.WorkerLiveness = h.liveness()
	}

	c.JSON(http.StatusOK, resp)
}
