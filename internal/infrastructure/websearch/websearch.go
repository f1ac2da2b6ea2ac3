// Package websearch provides the web research tool. It runs either in
// simulated mode with canned results or against the Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

const (
	ModeSimulated = "simulated"
	ModeTavily    = "tavily"
)

type Config struct {
	Mode       string
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

type Tool struct {
	mode       string
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

func New(cfg Config) (*Tool, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeSimulated
	}
	switch mode {
	case ModeSimulated:
	case ModeTavily:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, domain.WrapError(domain.ErrAuthentication, "configure web search",
				errors.New("tavily api key is not set"))
		}
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "configure web search",
			fmt.Errorf("unknown mode %q", cfg.Mode))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Tool{
		mode:       mode,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (t *Tool) Name() string { return "web_search" }

func (t *Tool) Description() string {
	return "Search the web for current information, news, or facts not in your personal documents. Input should be a search query."
}

func (t *Tool) Invoke(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "web search",
			errors.New("empty query"))
	}
	if t.mode == ModeSimulated {
		return t.simulated(query), nil
	}
	return t.tavily(ctx, query)
}

func (t *Tool) simulated(query string) string {
	var b strings.Builder
	b.WriteString("Web Search Results (simulated):\n\n")
	for i := 1; i <= t.maxResults; i++ {
		fmt.Fprintf(&b, "[%d] Result about %q\n    This is a simulated search result. Configure a search provider for live data.\n\n", i, query)
	}
	return b.String()
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *Tool) tavily(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:     t.apiKey,
		Query:      query,
		MaxResults: t.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrServiceUnavailable, "web search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("search status %s: %s", resp.Status, strings.TrimSpace(string(raw)))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", domain.WrapError(domain.ErrAuthentication, "web search", err)
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return "", domain.WrapError(domain.ErrServiceUnavailable, "web search", err)
		default:
			return "", err
		}
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return "Web Search Results:\n\nNo results found.\n", nil
	}

	var b strings.Builder
	b.WriteString("Web Search Results:\n\n")
	for i, res := range parsed.Results {
		fmt.Fprintf(&b, "[%d] %s\n    %s\n    %s\n\n", i+1, res.Title, res.Content, res.URL)
	}
	return b.String(), nil
}
