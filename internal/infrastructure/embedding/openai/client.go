// Package openai implements the embedding-service boundary against an
// OpenAI-compatible /v1/embeddings endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// PricePerMillionTokens converts reported token usage into a cost unit
	// for the ledger.
	PricePerMillionTokens float64
	// Dimensions, when positive, asks the service to truncate vectors to
	// this width. Zero leaves the model default.
	Dimensions int
	Timeout    time.Duration
	// UsageHook, when set, observes token usage of every successful call
	// alongside the ledger.
	UsageHook func(model string, tokens int)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	price      float64
	dimensions int
	httpClient *http.Client
	ledger     ports.CostLedger
	usageHook  func(model string, tokens int)
}

// New fails with ErrAuthentication when no credential is configured:
// that is an operator problem, not a transient one.
func New(cfg Config, ledger ports.CostLedger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrAuthentication, "configure embedder",
			errors.New("embedding api key is not set"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.PricePerMillionTokens <= 0 {
		cfg.PricePerMillionTokens = 0.02
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		price:      cfg.PricePerMillionTokens,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
		ledger:     ledger,
		usageHook:  cfg.UsageHook,
	}, nil
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed converts a batch of texts into vectors, one per input, same order.
// Empty input yields empty output without a remote call. Usage is credited
// to the ledger on every successful call, before the caller can fail any
// later step.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model, Dimensions: c.dimensions})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrServiceUnavailable, "embeddings request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, classifyStatus(resp)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("invalid embedding index: %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	c.recordUsage(ctx, len(texts), parsed.Usage.TotalTokens)
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) recordUsage(ctx context.Context, items, tokens int) {
	if c.usageHook != nil {
		c.usageHook(c.model, tokens)
	}
	if c.ledger == nil {
		return
	}
	rec := domain.UsageRecord{
		ID:         uuid.NewString(),
		Model:      c.model,
		Operation:  fmt.Sprintf("embed %d texts", items),
		InputItems: items,
		Tokens:     tokens,
		Cost:       float64(tokens) / 1_000_000 * c.price,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.ledger.Record(ctx, rec); err != nil {
		slog.Error("cost_record_failed", "model", c.model, "tokens", tokens, "error", err)
	}
}

func classifyStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(raw))
	err := fmt.Errorf("embeddings status %s: %s", resp.Status, msg)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.WrapError(domain.ErrAuthentication, "embeddings request", err)
	case isRetryableStatus(resp.StatusCode):
		return domain.WrapError(domain.ErrServiceUnavailable, "embeddings request", err)
	default:
		return err
	}
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
