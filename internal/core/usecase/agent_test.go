package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

type routerFake struct {
	route domain.QueryRoute
	err   error
}

func (r *routerFake) Route(context.Context, string) (domain.QueryRoute, error) {
	return r.route, r.err
}

type generatorFake struct {
	answer       string
	err          error
	observations map[string]string
	history      []domain.ConversationMessage
}

func (g *generatorFake) GenerateAnswer(_ context.Context, _ string, observations map[string]string, history []domain.ConversationMessage) (string, error) {
	g.observations = observations
	g.history = history
	return g.answer, g.err
}

type conversationFake struct {
	messages []domain.ConversationMessage
}

func (c *conversationFake) AppendMessage(_ context.Context, msg domain.ConversationMessage) error {
	c.messages = append(c.messages, msg)
	return nil
}

func (c *conversationFake) ListRecentMessages(_ context.Context, conversationID string, limit int) ([]domain.ConversationMessage, error) {
	out := make([]domain.ConversationMessage, 0)
	for _, msg := range c.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type toolFake struct {
	name   string
	result string
	err    error
	calls  int
}

func (t *toolFake) Name() string        { return t.name }
func (t *toolFake) Description() string { return t.name }

func (t *toolFake) Invoke(context.Context, string) (string, error) {
	t.calls++
	return t.result, t.err
}

func newAgent(router *routerFake, gen *generatorFake, conv *conversationFake, docs, web *toolFake) *AgentService {
	var docsTool, webTool ports.Tool
	if docs != nil {
		docsTool = docs
	}
	if web != nil {
		webTool = web
	}
	return NewAgentService(router, gen, conv, docsTool, webTool, AgentLimits{})
}

func TestAskDocumentsRouteInvokesOnlyDocumentsTool(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "[1] From: notes.txt"}
	web := &toolFake{name: "web_search", result: "irrelevant"}
	gen := &generatorFake{answer: "Your documents say noon."}
	agent := newAgent(&routerFake{route: domain.RouteDocuments}, gen, &conversationFake{}, docs, web)

	answer, err := agent.Ask(context.Background(), "when is the meeting?", "")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if docs.calls != 1 || web.calls != 0 {
		t.Fatalf("expected only documents tool, got docs=%d web=%d", docs.calls, web.calls)
	}
	if answer.Route != domain.RouteDocuments {
		t.Fatalf("unexpected route %q", answer.Route)
	}
	if gen.observations["search_documents"] != "[1] From: notes.txt" {
		t.Fatalf("observation missing: %v", gen.observations)
	}
	if len(answer.ToolsUsed) != 1 || answer.ToolsUsed[0] != "search_documents" {
		t.Fatalf("unexpected tools used %v", answer.ToolsUsed)
	}
	if answer.Sources.Confidence != 0.9 {
		t.Fatalf("expected cited confidence, got %v", answer.Sources.Confidence)
	}
	if answer.ConversationID == "" {
		t.Fatal("expected generated conversation id")
	}
}

func TestAskBothRouteInvokesBothTools(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "doc result"}
	web := &toolFake{name: "web_search", result: "web result"}
	gen := &generatorFake{answer: "combined"}
	agent := newAgent(&routerFake{route: domain.RouteBoth}, gen, &conversationFake{}, docs, web)

	answer, err := agent.Ask(context.Background(), "compare my notes with the latest news", "conv-1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if docs.calls != 1 || web.calls != 1 {
		t.Fatalf("expected both tools, got docs=%d web=%d", docs.calls, web.calls)
	}
	if len(answer.ToolsUsed) != 2 {
		t.Fatalf("unexpected tools used %v", answer.ToolsUsed)
	}
}

func TestAskNoneRouteSkipsTools(t *testing.T) {
	docs := &toolFake{name: "search_documents"}
	web := &toolFake{name: "web_search"}
	gen := &generatorFake{answer: "Hello!"}
	agent := newAgent(&routerFake{route: domain.RouteNone}, gen, &conversationFake{}, docs, web)

	answer, err := agent.Ask(context.Background(), "hi there", "conv-1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if docs.calls != 0 || web.calls != 0 {
		t.Fatalf("expected no tool calls, got docs=%d web=%d", docs.calls, web.calls)
	}
	if len(answer.ToolsUsed) != 0 {
		t.Fatalf("unexpected tools used %v", answer.ToolsUsed)
	}
	if answer.Sources.Confidence != 0.5 {
		t.Fatalf("expected no-tools confidence, got %v", answer.Sources.Confidence)
	}
}

func TestAskFailedToolBecomesObservation(t *testing.T) {
	docs := &toolFake{name: "search_documents", err: errors.New("index broken")}
	web := &toolFake{name: "web_search", result: "web result"}
	gen := &generatorFake{answer: "partial answer from web search"}
	agent := newAgent(&routerFake{route: domain.RouteBoth}, gen, &conversationFake{}, docs, web)

	answer, err := agent.Ask(context.Background(), "question", "conv-1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(gen.observations["search_documents"], "failed") {
		t.Fatalf("expected failure observation, got %v", gen.observations)
	}
	if len(answer.ToolsUsed) != 1 || answer.ToolsUsed[0] != "web_search" {
		t.Fatalf("failed tool should not count as used: %v", answer.ToolsUsed)
	}
}

func TestAskRouterFailureFallsBackToBoth(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "doc"}
	web := &toolFake{name: "web_search", result: "web"}
	gen := &generatorFake{answer: "answer"}
	agent := newAgent(&routerFake{err: errors.New("router down")}, gen, &conversationFake{}, docs, web)

	answer, err := agent.Ask(context.Background(), "question", "conv-1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Route != domain.RouteBoth {
		t.Fatalf("expected fallback to both, got %q", answer.Route)
	}
	if docs.calls != 1 || web.calls != 1 {
		t.Fatalf("expected both tools on fallback, got docs=%d web=%d", docs.calls, web.calls)
	}
}

func TestAskAppendsBothTurnsToConversation(t *testing.T) {
	conv := &conversationFake{}
	gen := &generatorFake{answer: "It is noon, per your documents."}
	agent := newAgent(&routerFake{route: domain.RouteNone}, gen, conv, nil, nil)

	if _, err := agent.Ask(context.Background(), "when?", "conv-1"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(conv.messages) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(conv.messages))
	}
	if conv.messages[0].Role != "user" || conv.messages[1].Role != "assistant" {
		t.Fatalf("unexpected roles %q/%q", conv.messages[0].Role, conv.messages[1].Role)
	}
}

func TestAskUncitedAnswerGetsSourcesNote(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "doc"}
	gen := &generatorFake{answer: "It happens at noon."}
	agent := newAgent(&routerFake{route: domain.RouteDocuments}, gen, &conversationFake{}, docs, nil)

	answer, err := agent.Ask(context.Background(), "when?", "conv-1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(answer.Text, "*Sources: your documents*") {
		t.Fatalf("expected appended sources note:\n%s", answer.Text)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	agent := newAgent(&routerFake{route: domain.RouteNone}, &generatorFake{}, &conversationFake{}, nil, nil)

	if _, err := agent.Ask(context.Background(), "   ", "conv-1"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

var _ ports.QuestionRouter = (*routerFake)(nil)
var _ ports.AnswerGenerator = (*generatorFake)(nil)
var _ ports.ConversationStore = (*conversationFake)(nil)
var _ ports.Tool = (*toolFake)(nil)

type agentMetricsFake struct {
	runs  map[string]string
	tools map[string]string
}

func newAgentMetricsFake() *agentMetricsFake {
	return &agentMetricsFake{
		runs:  make(map[string]string),
		tools: make(map[string]string),
	}
}

func (m *agentMetricsFake) RecordRun(route, status string)     { m.runs[route] = status }
func (m *agentMetricsFake) RecordToolCall(tool, status string) { m.tools[tool] = status }

func TestAskRecordsRunAndToolMetrics(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "[1] From: notes.txt"}
	web := &toolFake{name: "web_search", err: errors.New("tavily down")}
	agent := newAgent(&routerFake{route: domain.RouteBoth}, &generatorFake{answer: "done"}, &conversationFake{}, docs, web)
	recorder := newAgentMetricsFake()
	agent.SetMetrics(recorder)

	if _, err := agent.Ask(context.Background(), "what do my notes say?", ""); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if recorder.runs["both"] != "success" {
		t.Fatalf("run not recorded: %v", recorder.runs)
	}
	if recorder.tools["search_documents"] != "success" {
		t.Fatalf("documents tool call not recorded: %v", recorder.tools)
	}
	if recorder.tools["web_search"] != "error" {
		t.Fatalf("failed web tool call not recorded: %v", recorder.tools)
	}
}

func TestAskRecordsFailedRun(t *testing.T) {
	docs := &toolFake{name: "search_documents", result: "ok"}
	gen := &generatorFake{err: errors.New("model offline")}
	agent := newAgent(&routerFake{route: domain.RouteDocuments}, gen, &conversationFake{}, docs, nil)
	recorder := newAgentMetricsFake()
	agent.SetMetrics(recorder)

	if _, err := agent.Ask(context.Background(), "what do my notes say?", ""); err == nil {
		t.Fatal("expected generation error")
	}
	if recorder.runs["documents"] != "error" {
		t.Fatalf("failed run not recorded: %v", recorder.runs)
	}
}
