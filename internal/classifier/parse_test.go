package classifier

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
)

const validJSON = `{
	"topics": ["freios"],
	"sentiment": "negativo",
	"satisfaction": 2,
	"category": "técnico",
	"complexity": "média",
	"keywords": ["freio", "ch570"],
	"summary": "Cliente relata problema no freio"
}`

func TestParseResult_PlainJSON(t *testing.T) {
	result, err := parseResult(validJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"freios"}, result.Topics)
	assert.Equal(t, "negativo", result.Sentiment)
	assert.Equal(t, 2, result.Satisfaction)
	assert.Equal(t, "técnico", result.Category)
	assert.Equal(t, "Cliente relata problema no freio", result.Summary)
}

func TestParseResult_MarkdownJSONFence(t *testing.T) {
	raw := "```json\n" + validJSON + "\n```"

	result, err := parseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "técnico", result.Category)
}

func TestParseResult_BareFence(t *testing.T) {
	raw := "```\n" + validJSON + "\n```"

	result, err := parseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Satisfaction)
}

func TestParseResult_FenceWithLeadingProse(t *testing.T) {
	raw := "Aqui está a análise solicitada:\n```json\n" + validJSON + "\n```\nEspero ter ajudado."

	result, err := parseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "negativo", result.Sentiment)
}

func TestParseResult_MalformedIsSentinelError(t *testing.T) {
	_, err := parseResult("the brakes seem broken, rating 2/5")

	assert.True(t, errors.Is(err, ErrMalformedResult))
}

func TestParseResult_SatisfactionClampedToNeutral(t *testing.T) {
	for _, satisfaction := range []int{0, -1, 6, 100} {
		raw := fmt.Sprintf(`{"satisfaction": %d, "category": "geral"}`, satisfaction)

		result, err := parseResult(raw)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Satisfaction, "satisfaction %d should clamp to neutral", satisfaction)
	}
}

func TestBuildPrompt_WindowsLastTenMessages(t *testing.T) {
	transcript := make([]domain.TranscriptMessage, 15)
	for i := range transcript {
		transcript[i] = domain.TranscriptMessage{
			Sender:  "user",
			Content: fmt.Sprintf("mensagem %d", i),
		}
	}

	prompt := buildPrompt(transcript)

	assert.NotContains(t, prompt, "mensagem 4")
	assert.Contains(t, prompt, "mensagem 5")
	assert.Contains(t, prompt, "mensagem 14")
}

func TestBuildPrompt_TruncatesLongMessages(t *testing.T) {
	transcript := []domain.TranscriptMessage{
		{Sender: "user", Content: strings.Repeat("a", 500)},
	}

	prompt := buildPrompt(transcript)

	assert.Contains(t, prompt, "user: "+strings.Repeat("a", 200))
	assert.NotContains(t, prompt, strings.Repeat("a", 201))
}

func TestBuildPrompt_TruncatesOnRuneBoundaries(t *testing.T) {
	transcript := []domain.TranscriptMessage{
		{Sender: "user", Content: strings.Repeat("ç", 250)},
	}

	prompt := buildPrompt(transcript)

	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, "user: "+strings.Repeat("ç", 200))
	assert.NotContains(t, prompt, strings.Repeat("ç", 201))
}

func TestBuildPrompt_DefaultsEmptySender(t *testing.T) {
	prompt := buildPrompt([]domain.TranscriptMessage{{Content: "olá"}})

	assert.Contains(t, prompt, "user: olá")
}
