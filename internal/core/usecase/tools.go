package usecase

import (
	"context"

	"github.com/akulikov/research-assistant/internal/core/ports"
)

// DocumentsTool exposes the retrieval pipeline as a named text-in,
// text-out capability for orchestrators.
type DocumentsTool struct {
	searcher ports.DocumentSearcher
	topK     int
}

func NewDocumentsTool(searcher ports.DocumentSearcher, topK int) *DocumentsTool {
	if topK <= 0 {
		topK = 3
	}
	return &DocumentsTool{searcher: searcher, topK: topK}
}

func (t *DocumentsTool) Name() string { return "search_documents" }

func (t *DocumentsTool) Description() string {
	return "Search through your personal documents and notes. Use this when the question is about YOUR information, past notes, saved documents, or personal knowledge. Input should be a search query."
}

func (t *DocumentsTool) Invoke(ctx context.Context, query string) (string, error) {
	return t.searcher.Search(ctx, query, t.topK)
}

var _ ports.Tool = (*DocumentsTool)(nil)
