package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
)

const systemPrompt = `Você é um especialista em análise de conversas de suporte técnico.

Analise a conversa fornecida e extraia:
1. Tópicos principais mencionados
2. Sentimento do usuário (positivo/negativo/neutro)
3. Nível de satisfação estimado (1-5)
4. Categoria do problema (técnico, comercial, suporte, etc.)
5. Complexidade da solução (baixa, média, alta)
6. Palavras-chave relevantes

Responda APENAS em formato JSON:
{
    "topics": ["tópico1", "tópico2"],
    "sentiment": "positivo|negativo|neutro",
    "satisfaction": 1-5,
    "category": "categoria",
    "complexity": "baixa|média|alta",
    "keywords": ["palavra1", "palavra2"],
    "summary": "resumo de 1 linha"
}`

const (
	// transcriptWindow bounds how much of the conversation reaches the
	// model: the last N messages, each truncated.
	transcriptWindow = 10
	maxMessageChars  = 200
	classifierTemp   = 0.1
)

// Config holds the engine connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LLMEngine implements Engine on an OpenAI-compatible chat API via
// langchaingo.
type LLMEngine struct {
	client llms.Model
	log    *zap.Logger
}

// NewLLMEngine creates an engine client. BaseURL may point at any
// OpenAI-compatible service.
func NewLLMEngine(cfg Config, log *zap.Logger) (*LLMEngine, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	return &LLMEngine{client: client, log: log}, nil
}

// Classify sends the transcript to the model and parses its JSON answer.
// A syntactically broken answer returns ErrMalformedResult.
func (e *LLMEngine) Classify(ctx context.Context, sessionID string, transcript []domain.TranscriptMessage) (*Result, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildPrompt(transcript))},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(classifierTemp))
	if err != nil {
		return nil, fmt.Errorf("classification call failed for session %s: %w", sessionID, err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrMalformedResult)
	}

	result, err := parseResult(response.Choices[0].Content)
	if err != nil {
		e.log.Warn("Classification response is not valid JSON",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}

	return result, nil
}

// buildPrompt renders the analysis request from the tail of the transcript.
func buildPrompt(transcript []domain.TranscriptMessage) string {
	if len(transcript) > transcriptWindow {
		transcript = transcript[len(transcript)-transcriptWindow:]
	}

	var b strings.Builder
	b.WriteString("Analise esta conversa de suporte técnico:\n\n")
	for _, msg := range transcript {
		sender := msg.Sender
		if sender == "" {
			sender = "user"
		}
		text := msg.Content
		if len(text) > maxMessageChars {
			if runes := []rune(text); len(runes) > maxMessageChars {
				text = string(runes[:maxMessageChars])
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", sender, text)
	}
	b.WriteString("\nForneça a análise em formato JSON conforme instruído.")
	return b.String()
}
