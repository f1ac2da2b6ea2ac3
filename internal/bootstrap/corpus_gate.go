package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
	"github.com/akulikov/research-assistant/internal/observability/metrics"
)

type corpusSource interface {
	ports.DocumentSearcher
	ChunkCount() int
}

// CorpusGate serializes corpus rebuilds against searches. The retrieval
// service itself is lock-free; everything that reaches it in a running
// process goes through the gate, so a rebuild never races a query.
type CorpusGate struct {
	mu        sync.RWMutex
	service   string
	searcher  corpusSource
	rebuilder ports.CorpusRebuilder
	metrics   *metrics.ReindexMetrics
}

func NewCorpusGate(
	service string,
	searcher corpusSource,
	rebuilder ports.CorpusRebuilder,
	m *metrics.ReindexMetrics,
) *CorpusGate {
	return &CorpusGate{
		service:   service,
		searcher:  searcher,
		rebuilder: rebuilder,
		metrics:   m,
	}
}

var (
	_ ports.DocumentSearcher = (*CorpusGate)(nil)
	_ ports.CorpusRebuilder  = (*CorpusGate)(nil)
)

func (g *CorpusGate) Search(ctx context.Context, query string, k int) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.searcher.Search(ctx, query, k)
}

func (g *CorpusGate) LoadDocuments(ctx context.Context, docs []domain.Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.searcher.LoadDocuments(ctx, docs)
}

func (g *CorpusGate) Rebuild(ctx context.Context) error {
	return g.RebuildOnEvent(ctx, time.Time{})
}

// RebuildOnEvent rebuilds the corpus and, when receivedAt is set, records
// how long the triggering event waited for the gate.
func (g *CorpusGate) RebuildOnEvent(ctx context.Context, receivedAt time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.metrics != nil {
		if !receivedAt.IsZero() {
			g.metrics.ObserveEventLag(g.service, time.Since(receivedAt))
		}
		g.metrics.StartRebuild()
	}

	start := time.Now()
	err := g.rebuilder.Rebuild(ctx)

	if g.metrics != nil {
		g.metrics.FinishRebuild(g.service, time.Since(start), err)
		if err == nil {
			g.metrics.SetChunksIndexed(g.service, g.searcher.ChunkCount())
		}
	}
	return err
}
