package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_DetectsBrakeTopic(t *testing.T) {
	topics := Extract("Problema no freio da CH570")

	assert.Contains(t, topics, "freios")
	assert.Contains(t, topics, "problema")
}

func TestExtract_MultipleTopics(t *testing.T) {
	topics := Extract("O motor não dá partida e a bateria parece fraca, precisa de manutenção preventiva")

	assert.Contains(t, topics, "motor")
	assert.Contains(t, topics, "elétrico")
	assert.Contains(t, topics, "manutenção")
}

func TestExtract_SharedTriggerWordYieldsBothTopics(t *testing.T) {
	// "pressão" belongs to both the hydraulic and the tire vocabulary.
	topics := Extract("verificar a pressão antes de sair")

	assert.Equal(t, []string{"hidráulico", "pneu"}, topics)
}

func TestExtract_NoTopicsForUnrelatedText(t *testing.T) {
	assert.Nil(t, Extract("Bom dia, tudo bem com você?"))
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Nil(t, Extract(""))
}

func TestExtract_CaseInsensitive(t *testing.T) {
	topics := Extract("FREIO travado no equipamento")

	assert.Contains(t, topics, "freios")
}

func TestExtract_Deterministic(t *testing.T) {
	text := "freio com defeito, óleo vazando e pneu furado"

	first := Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Extract(text))
	}
}

func TestKeywords_FiltersStopWords(t *testing.T) {
	keywords := Keywords("Problema no freio da CH570")

	assert.NotEmpty(t, keywords)
	assert.Contains(t, keywords, "problema")
	assert.Contains(t, keywords, "freio")
	assert.Contains(t, keywords, "ch570")
	assert.NotContains(t, keywords, "da")
	assert.NotContains(t, keywords, "no")
}

func TestKeywords_OrderedByFrequency(t *testing.T) {
	keywords := Keywords("motor motor motor freio freio bateria")

	assert.Equal(t, []string{"motor", "freio", "bateria"}, keywords)
}

func TestKeywords_BoundedToTen(t *testing.T) {
	keywords := Keywords("alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima")

	assert.Len(t, keywords, 10)
}

func TestKeywords_ShortWordsExcluded(t *testing.T) {
	keywords := Keywords("ar ok freio")

	assert.Equal(t, []string{"freio"}, keywords)
}
