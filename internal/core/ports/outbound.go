package ports

import (
	"context"
	"io"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, chunkCount int, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes corpus-changed events.
type MessageQueue interface {
	PublishCorpusChanged(ctx context.Context, documentID string) error
	SubscribeCorpusChanged(ctx context.Context, handler func(context.Context, string) error) error
}

// TextLoader extracts the full text of a stored document, dispatching on
// the filename extension.
type TextLoader interface {
	Load(ctx context.Context, doc *domain.Document) (string, error)
}

// NormalizeFunc cleans raw extracted text before chunking. Pure and
// idempotent.
type NormalizeFunc func(text string) string

// Chunker splits normalized text into overlapping segments.
type Chunker interface {
	Chunk(text string) []string
}

// Embedder converts a batch of texts into fixed-dimension vectors,
// one per input, same order. Empty input yields empty output.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Neighbor is one nearest-neighbor hit: squared Euclidean distance and the
// position of the vector in the built set.
type Neighbor struct {
	Distance float64
	Position int
}

// VectorIndex is an exact nearest-neighbor index. Build replaces any prior
// contents wholesale.
type VectorIndex interface {
	Build(vectors [][]float32) error
	Query(vector []float32, k int) ([]Neighbor, error)
	Len() int
}

// CostLedger records usage of billed remote calls.
type CostLedger interface {
	Record(ctx context.Context, rec domain.UsageRecord) error
	Totals(ctx context.Context) (domain.UsageTotals, error)
}

// Tool is a named capability the orchestrator can invoke with a free-text
// query. Text in, text out; the whole contract an orchestrator needs.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, query string) (string, error)
}

// QuestionRouter classifies which information source(s) a question needs.
type QuestionRouter interface {
	Route(ctx context.Context, question string) (domain.QueryRoute, error)
}

// AnswerGenerator synthesizes the final user-facing answer from tool
// observations.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, observations map[string]string, history []domain.ConversationMessage) (string, error)
}

// ConversationStore persists chat history.
type ConversationStore interface {
	AppendMessage(ctx context.Context, msg domain.ConversationMessage) error
	ListRecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.ConversationMessage, error)
}
