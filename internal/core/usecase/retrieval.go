package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

// EmptyCorpusMessage is what Search returns before any documents are
// loaded. Callers surface it to the user instead of treating it as an
// error.
const EmptyCorpusMessage = "No documents loaded. Please upload documents first."

type RetrievalLimits struct {
	TopK         int
	ExcerptChars int
}

// RetrievalService owns the chunk list and vector index for one process.
// It is lock-free: callers serialize LoadDocuments against Search.
type RetrievalService struct {
	loader     ports.TextLoader
	normalizer ports.NormalizeFunc
	chunker    ports.Chunker
	embedder   ports.Embedder
	index      ports.VectorIndex
	repo       ports.DocumentRepository
	limits     RetrievalLimits
	metrics    SearchMetrics

	chunks []domain.Chunk
}

func NewRetrievalService(
	loader ports.TextLoader,
	normalizer ports.NormalizeFunc,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	repo ports.DocumentRepository,
	limits RetrievalLimits,
) *RetrievalService {
	if limits.TopK <= 0 {
		limits.TopK = 3
	}
	if limits.ExcerptChars <= 0 {
		limits.ExcerptChars = 300
	}
	if normalizer == nil {
		normalizer = func(s string) string { return s }
	}
	return &RetrievalService{
		loader:     loader,
		normalizer: normalizer,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		repo:       repo,
		limits:     limits,
	}
}

// LoadDocuments rebuilds the corpus from scratch: every document is
// loaded, normalized and chunked, all chunks are embedded in one batch,
// and the index is replaced wholesale. A document that fails to load is
// marked failed and skipped; it never aborts the batch.
func (s *RetrievalService) LoadDocuments(ctx context.Context, docs []domain.Document) error {
	chunks := make([]domain.Chunk, 0)
	chunksPerDoc := make(map[string]int, len(docs))

	for i := range docs {
		doc := docs[i]

		text, err := s.loader.Load(ctx, &doc)
		if err != nil {
			slog.Error("document_load_failed",
				"document_id", doc.ID,
				"filename", doc.Filename,
				"error", err,
			)
			s.markFailed(ctx, doc.ID, err)
			continue
		}

		pieces := s.chunker.Chunk(s.normalizer(text))
		for _, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				Text:     piece,
				Source:   doc.Filename,
				Sequence: len(chunks),
			})
		}
		chunksPerDoc[doc.ID] = len(pieces)
	}

	if len(chunks) == 0 {
		if err := s.index.Build(nil); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
		s.chunks = nil
		s.markIndexed(ctx, chunksPerDoc)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))
	}

	if err := s.index.Build(vectors); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	s.chunks = chunks

	s.markIndexed(ctx, chunksPerDoc)

	slog.Info("corpus_loaded",
		"documents", len(chunksPerDoc),
		"chunks", len(chunks),
	)
	return nil
}

// SetMetrics is called once during wiring, before the service handles
// traffic.
func (s *RetrievalService) SetMetrics(m SearchMetrics) {
	s.metrics = m
}

// Search embeds the query, runs a nearest-neighbor lookup and formats a
// numbered result list best match first. Distances are surfaced as-is;
// nothing is thresholded away.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) (string, error) {
	start := time.Now()
	out, results, err := s.search(ctx, query, k)
	if s.metrics != nil {
		empty := err == nil && out == EmptyCorpusMessage
		s.metrics.RecordSearch(results, empty, time.Since(start), err)
	}
	return out, err
}

func (s *RetrievalService) search(ctx context.Context, query string, k int) (string, int, error) {
	if len(s.chunks) == 0 || s.index.Len() == 0 {
		return EmptyCorpusMessage, 0, nil
	}
	if k <= 0 {
		k = s.limits.TopK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", 0, fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := s.index.Query(vector, k)
	if err != nil {
		if domain.IsKind(err, domain.ErrEmptyIndex) {
			return EmptyCorpusMessage, 0, nil
		}
		return "", 0, fmt.Errorf("query index: %w", err)
	}

	matches := make([]domain.SearchMatch, 0, len(neighbors))
	for i, n := range neighbors {
		if n.Position < 0 || n.Position >= len(s.chunks) {
			return "", 0, fmt.Errorf("index position %d out of range", n.Position)
		}
		chunk := s.chunks[n.Position]
		matches = append(matches, domain.SearchMatch{
			Rank:     i + 1,
			Distance: n.Distance,
			Source:   chunk.Source,
			Excerpt:  truncate(chunk.Text, s.limits.ExcerptChars),
		})
	}
	return formatMatches(matches), len(matches), nil
}

// ChunkCount reports the size of the in-memory corpus. Callers that
// share the service across goroutines must serialize this with
// LoadDocuments.
func (s *RetrievalService) ChunkCount() int {
	return len(s.chunks)
}

func (s *RetrievalService) markFailed(ctx context.Context, id string, cause error) {
	if s.repo == nil {
		return
	}
	if err := s.repo.UpdateStatus(ctx, id, domain.StatusFailed, 0, cause.Error()); err != nil {
		slog.Error("document_status_update_failed", "document_id", id, "error", err)
	}
}

func (s *RetrievalService) markIndexed(ctx context.Context, chunksPerDoc map[string]int) {
	if s.repo == nil {
		return
	}
	for id, count := range chunksPerDoc {
		if err := s.repo.UpdateStatus(ctx, id, domain.StatusIndexed, count, ""); err != nil {
			slog.Error("document_status_update_failed", "document_id", id, "error", err)
		}
	}
}

func formatMatches(matches []domain.SearchMatch) string {
	var b strings.Builder
	b.WriteString("Document Search Results:\n\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "[%d] From: %s\n    %s\n    (Relevance distance: %.4f)\n\n", m.Rank, m.Source, m.Excerpt, m.Distance)
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
