package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akulikov/research-assistant/internal/core/ports"
)

// ReindexService rebuilds the retrieval corpus from every persisted
// document. Rebuilds are wholesale; there is no per-document increment.
type ReindexService struct {
	repo     ports.DocumentRepository
	searcher ports.DocumentSearcher
}

func NewReindexService(repo ports.DocumentRepository, searcher ports.DocumentSearcher) *ReindexService {
	return &ReindexService{repo: repo, searcher: searcher}
}

func (s *ReindexService) Rebuild(ctx context.Context) error {
	started := time.Now()

	docs, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if err := s.searcher.LoadDocuments(ctx, docs); err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	slog.Info("corpus_rebuilt",
		"documents", len(docs),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

var _ ports.CorpusRebuilder = (*ReindexService)(nil)
