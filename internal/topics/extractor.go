// Package topics implements the lightweight keyword/topic extraction used
// by the content pipeline. It is intentionally dictionary-based: cheap
// synchronous CPU work bounded to a single message, no model calls.
package topics

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultConfidence is attached to rows whose topics came from this
// extractor. Engine-classified topics carry a higher score.
const DefaultConfidence = 0.8

// topicTriggers maps a canonical topic to the words that signal it.
// The vocabulary targets the technical-support domain of the platform.
var topicTriggers = map[string][]string{
	"freios":       {"freio", "freios", "frenagem", "pastilha", "disco", "tambor"},
	"motor":        {"motor", "motores", "arranque", "partida", "combustão"},
	"hidráulico":   {"hidráulico", "hidráulica", "óleo", "fluido", "pressão"},
	"elétrico":     {"elétrico", "elétrica", "bateria", "alternador", "fiação"},
	"pneu":         {"pneu", "pneus", "roda", "rodas", "calibragem", "pressão"},
	"manutenção":   {"manutenção", "manutenções", "preventiva", "corretiva", "revisão"},
	"peças":        {"peça", "peças", "componente", "componentes", "reposição"},
	"problema":     {"problema", "problemas", "defeito", "defeitos", "falha", "falhas"},
	"configuração": {"configuração", "configurar", "ajuste", "calibração"},
}

var stopWords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "de": {}, "da": {}, "do": {}, "em": {},
	"um": {}, "uma": {}, "para": {}, "com": {}, "não": {}, "que": {},
	"se": {}, "por": {},
}

// wordPattern tokenizes on Unicode letters and digits so accented
// Portuguese words survive intact.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]{3,}`)

// maxKeywords bounds the keyword list to the most frequent terms.
const maxKeywords = 10

// triggerIndex inverts topicTriggers for single-pass lookup. A word may
// signal more than one topic ("pressão" is both hydraulic and tire
// vocabulary), so each entry holds every topic it triggers.
var triggerIndex = buildTriggerIndex()

func buildTriggerIndex() map[string][]string {
	idx := make(map[string][]string)
	for topic, words := range topicTriggers {
		for _, w := range words {
			idx[w] = append(idx[w], topic)
		}
	}
	return idx
}

// topicOrder fixes the output order of detected topics so results are
// deterministic regardless of map iteration.
var topicOrder = []string{
	"freios", "motor", "hidráulico", "elétrico", "pneu",
	"manutenção", "peças", "problema", "configuração",
}

// Extract returns the canonical topics detected in text. Empty result
// means the content row is skipped entirely.
func Extract(text string) []string {
	found := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		for _, topic := range triggerIndex[word] {
			found[topic] = struct{}{}
		}
	}

	if len(found) == 0 {
		return nil
	}

	topics := make([]string, 0, len(found))
	for _, t := range topicOrder {
		if _, ok := found[t]; ok {
			topics = append(topics, t)
		}
	}
	return topics
}

// Keywords returns the most frequent stop-word-filtered words of text,
// at most maxKeywords, ordered by descending frequency.
func Keywords(text string) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	// Sort by frequency, first occurrence breaking ties.
	firstSeen := make(map[string]int, len(order))
	for i, w := range order {
		firstSeen[w] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
