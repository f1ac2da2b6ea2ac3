package ollama

import (
	"fmt"
	"sort"
	"strings"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

func buildRoutePrompt(question string) string {
	return `You are a query router for a personal research assistant.
Decide which sources are needed to answer the user's question.
Return strict JSON object with a single key:
route (one of "documents", "web", "both", "none").

Use "documents" for questions about the user's own notes, files or saved knowledge.
Use "web" for questions needing current or public information.
Use "both" when personal context and fresh information are both required.
Use "none" for greetings and small talk.
No markdown, no extra keys.

Question:
` + question
}

func buildAnswerPrompt(question string, observations map[string]string, history []domain.ConversationMessage) string {
	var b strings.Builder

	b.WriteString("You are a personal research assistant. Answer using only the tool results below.\n")
	b.WriteString("When you use information from a tool result, name the tool it came from.\n")
	b.WriteString("If the tool results are insufficient, say so directly instead of guessing.\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	if len(observations) > 0 {
		// Stable tool order keeps prompts reproducible.
		names := make([]string, 0, len(observations))
		for name := range observations {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("Tool results:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "=== %s ===\n%s\n\n", name, observations[name])
		}
	} else {
		b.WriteString("No tool results are available for this question.\n\n")
	}

	fmt.Fprintf(&b, "Question:\n%s\n", question)
	return b.String()
}
