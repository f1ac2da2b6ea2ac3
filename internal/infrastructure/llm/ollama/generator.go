package ollama

import (
	"context"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, observations map[string]string, history []domain.ConversationMessage) (string, error) {
	return g.client.generateText(ctx, "generate", buildAnswerPrompt(question, observations, history))
}
