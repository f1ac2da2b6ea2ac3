// Package ollama adapts a local Ollama server for question routing and
// answer generation.
package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
	"github.com/akulikov/research-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
	ledger     ports.CostLedger
}

func New(baseURL, model string, executor *resilience.Executor, ledger ports.CostLedger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
		ledger:     ledger,
	}
}

type generateResult struct {
	Text             string
	PromptEvalTokens int
	EvalTokens       int
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var result generateResult

	call := func(ctx context.Context) error {
		var response struct {
			Response        string `json:"response"`
			PromptEvalCount int    `json:"prompt_eval_count"`
			EvalCount       int    `json:"eval_count"`
		}
		if err := c.postJSON(ctx, "/api/generate", reqBody, &response, operation); err != nil {
			return err
		}
		result = generateResult{
			Text:             strings.TrimSpace(response.Response),
			PromptEvalTokens: response.PromptEvalCount,
			EvalTokens:       response.EvalCount,
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTransientIfNeeded(operation, err)
	}

	c.recordUsage(ctx, operation, result)
	return result.Text, nil
}

func (c *Client) recordUsage(ctx context.Context, operation string, result generateResult) {
	if c.ledger == nil {
		return
	}
	tokens := result.PromptEvalTokens + result.EvalTokens
	if tokens == 0 {
		return
	}
	rec := domain.UsageRecord{
		ID:        uuid.NewString(),
		Model:     c.model,
		Operation: operation,
		Tokens:    tokens,
		// Local generation is free; tokens still count toward usage.
		Cost:      0,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.ledger.Record(ctx, rec); err != nil {
		slog.Error("cost_record_failed", "model", c.model, "operation", operation, "error", err)
	}
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
