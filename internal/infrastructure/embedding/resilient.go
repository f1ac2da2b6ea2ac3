package embedding

import (
	"context"
	"errors"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
	"github.com/akulikov/research-assistant/internal/infrastructure/resilience"
)

// Resilient decorates an Embedder with retry and circuit-breaker behavior.
// Callers above this decorator never retry themselves.
type Resilient struct {
	inner    ports.Embedder
	executor *resilience.Executor
}

func NewResilient(inner ports.Embedder, executor *resilience.Executor) *Resilient {
	return &Resilient{
		inner:    inner,
		executor: executor,
	}
}

func (r *Resilient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.executor.Execute(ctx, "embedding.embed", func(ctx context.Context) error {
		var execErr error
		vectors, execErr = r.inner.Embed(ctx, texts)
		return execErr
	}, classifyEmbeddingError)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (r *Resilient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := r.executor.Execute(ctx, "embedding.embed_query", func(ctx context.Context) error {
		var execErr error
		vector, execErr = r.inner.EmbedQuery(ctx, text)
		return execErr
	}, classifyEmbeddingError)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func classifyEmbeddingError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}
