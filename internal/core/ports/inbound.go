package ports

import (
	"context"
	"io"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
	Remove(ctx context.Context, id string) error
}

// DocumentSearcher is the inbound contract of the retrieval pipeline.
type DocumentSearcher interface {
	LoadDocuments(ctx context.Context, docs []domain.Document) error
	Search(ctx context.Context, query string, k int) (string, error)
}

// CorpusRebuilder rebuilds the retrieval corpus from persisted documents.
type CorpusRebuilder interface {
	Rebuild(ctx context.Context) error
}

// Assistant answers a question, picking information sources per query.
type Assistant interface {
	Ask(ctx context.Context, question, conversationID string) (*domain.AgentAnswer, error)
}
