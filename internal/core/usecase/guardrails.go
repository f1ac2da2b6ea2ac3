package usecase

import (
	"fmt"
	"strings"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

// Guardrails runs post-generation checks on agent answers before they
// reach the user. Pure string heuristics; the retrieval core never
// depends on them.
type Guardrails struct{}

func NewGuardrails() *Guardrails {
	return &Guardrails{}
}

var toolMentionWords = []string{"documents", "web", "search", "notes"}

var uncertaintyPhrases = []string{
	"not sure", "don't know", "cannot find",
	"unclear", "uncertain", "unable to",
	"don't have", "couldn't find", "no information",
}

var friendlyToolLabels = map[string]string{
	"search_documents": "your documents",
	"web_search":       "web search",
}

// VerifySources checks whether the answer cites where its information
// came from. Confidence is a rough score: 0.9 sourced, 0.7 tools used
// but uncited, 0.5 no tools at all.
func (g *Guardrails) VerifySources(answer string, toolsUsed []string) domain.SourceReview {
	hasURL := strings.Contains(answer, "http") || strings.Contains(answer, "Source:")

	lower := strings.ToLower(answer)
	hasToolMention := false
	for _, word := range toolMentionWords {
		if strings.Contains(lower, word) {
			hasToolMention = true
			break
		}
	}

	var confidence float64
	switch {
	case len(toolsUsed) > 0 && (hasURL || hasToolMention):
		confidence = 0.9
	case len(toolsUsed) > 0:
		confidence = 0.7
	default:
		confidence = 0.5
	}

	return domain.SourceReview{
		HasSources: hasURL || hasToolMention,
		CitedTools: toolsUsed,
		Confidence: confidence,
	}
}

// DetectUncertainty flags hedging language so the caller can suggest the
// user verify or clarify.
func (g *Guardrails) DetectUncertainty(answer string) domain.UncertaintyReview {
	lower := strings.ToLower(answer)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return domain.UncertaintyReview{IsUncertain: true, ShouldAskClarification: true}
		}
	}
	return domain.UncertaintyReview{}
}

// EnhanceResponse appends a sources note when tools were used but the
// answer never cited them.
func (g *Guardrails) EnhanceResponse(answer string, toolsUsed []string) string {
	review := g.VerifySources(answer, toolsUsed)
	if review.HasSources || len(toolsUsed) == 0 {
		return answer
	}

	labels := make([]string, len(toolsUsed))
	for i, tool := range toolsUsed {
		if friendly, ok := friendlyToolLabels[tool]; ok {
			labels[i] = friendly
		} else {
			labels[i] = tool
		}
	}
	return answer + fmt.Sprintf("\n\n*Sources: %s*", strings.Join(labels, ", "))
}
