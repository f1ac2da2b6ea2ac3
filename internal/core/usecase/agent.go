package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

type AgentLimits struct {
	HistoryMessages int
	RouteTimeout    time.Duration
	ToolTimeout     time.Duration
	AnswerTimeout   time.Duration
}

// AgentService answers questions by routing them to information sources,
// collecting tool observations and synthesizing a reviewed answer.
type AgentService struct {
	router        ports.QuestionRouter
	generator     ports.AnswerGenerator
	conversations ports.ConversationStore
	guardrails    *Guardrails
	documentsTool ports.Tool
	webTool       ports.Tool
	limits        AgentLimits
	metrics       AgentMetrics
}

func NewAgentService(
	router ports.QuestionRouter,
	generator ports.AnswerGenerator,
	conversations ports.ConversationStore,
	documentsTool ports.Tool,
	webTool ports.Tool,
	limits AgentLimits,
) *AgentService {
	if limits.HistoryMessages <= 0 {
		limits.HistoryMessages = 10
	}
	if limits.RouteTimeout <= 0 {
		limits.RouteTimeout = 20 * time.Second
	}
	if limits.ToolTimeout <= 0 {
		limits.ToolTimeout = 30 * time.Second
	}
	if limits.AnswerTimeout <= 0 {
		limits.AnswerTimeout = 90 * time.Second
	}
	return &AgentService{
		router:        router,
		generator:     generator,
		conversations: conversations,
		guardrails:    NewGuardrails(),
		documentsTool: documentsTool,
		webTool:       webTool,
		limits:        limits,
	}
}

// SetMetrics is called once during wiring, before the service handles
// traffic.
func (s *AgentService) SetMetrics(m AgentMetrics) {
	s.metrics = m
}

func (s *AgentService) Ask(ctx context.Context, question, conversationID string) (*domain.AgentAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "agent ask",
			fmt.Errorf("question is required"))
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history, err := s.conversations.ListRecentMessages(ctx, conversationID, s.limits.HistoryMessages)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}

	if err := s.conversations.AppendMessage(ctx, domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           "user",
		Content:        question,
	}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	route := s.route(ctx, question)
	observations, toolsUsed := s.observe(ctx, route, question)

	answerCtx, cancel := context.WithTimeout(ctx, s.limits.AnswerTimeout)
	defer cancel()
	text, err := s.generator.GenerateAnswer(answerCtx, question, observations, history)
	if err != nil {
		s.recordRun(route, "error")
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	s.recordRun(route, "success")

	text = s.guardrails.EnhanceResponse(text, toolsUsed)
	answer := &domain.AgentAnswer{
		Text:           text,
		Route:          route,
		ToolsUsed:      toolsUsed,
		ConversationID: conversationID,
		Sources:        s.guardrails.VerifySources(text, toolsUsed),
		Uncertainty:    s.guardrails.DetectUncertainty(text),
	}

	if err := s.conversations.AppendMessage(ctx, domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           "assistant",
		Content:        answer.Text,
	}); err != nil {
		slog.Error("conversation_append_failed", "conversation_id", conversationID, "error", err)
	}

	return answer, nil
}

func (s *AgentService) route(ctx context.Context, question string) domain.QueryRoute {
	routeCtx, cancel := context.WithTimeout(ctx, s.limits.RouteTimeout)
	defer cancel()

	route, err := s.router.Route(routeCtx, question)
	if err != nil {
		slog.Warn("route_failed", "error", err)
		return domain.RouteBoth
	}
	return route
}

// observe invokes the tools the route calls for. A failing tool is
// reported to the generator as an observation instead of aborting the
// whole question.
func (s *AgentService) observe(ctx context.Context, route domain.QueryRoute, question string) (map[string]string, []string) {
	var tools []ports.Tool
	switch route {
	case domain.RouteDocuments:
		tools = []ports.Tool{s.documentsTool}
	case domain.RouteWeb:
		tools = []ports.Tool{s.webTool}
	case domain.RouteBoth:
		tools = []ports.Tool{s.documentsTool, s.webTool}
	case domain.RouteNone:
		return nil, nil
	}

	observations := make(map[string]string, len(tools))
	toolsUsed := make([]string, 0, len(tools))
	for _, tool := range tools {
		if tool == nil {
			continue
		}
		toolCtx, cancel := context.WithTimeout(ctx, s.limits.ToolTimeout)
		result, err := tool.Invoke(toolCtx, question)
		cancel()
		if err != nil {
			slog.Error("tool_failed", "tool", tool.Name(), "error", err)
			s.recordToolCall(tool.Name(), "error")
			observations[tool.Name()] = fmt.Sprintf("The %s tool failed: %v", tool.Name(), err)
			continue
		}
		s.recordToolCall(tool.Name(), "success")
		observations[tool.Name()] = result
		toolsUsed = append(toolsUsed, tool.Name())
	}
	return observations, toolsUsed
}

func (s *AgentService) recordRun(route domain.QueryRoute, status string) {
	if s.metrics != nil {
		s.metrics.RecordRun(string(route), status)
	}
}

func (s *AgentService) recordToolCall(tool, status string) {
	if s.metrics != nil {
		s.metrics.RecordToolCall(tool, status)
	}
}

var _ ports.Assistant = (*AgentService)(nil)
