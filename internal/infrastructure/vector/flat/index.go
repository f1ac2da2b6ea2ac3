// Package flat provides an exact in-process nearest-neighbor index using
// brute-force squared Euclidean distance. The index is rebuilt wholesale on
// every load and never persisted.
package flat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

type Index struct {
	dimension int
	vectors   [][]float32
}

func New() *Index {
	return &Index{}
}

// Build replaces the entire index contents. All vectors must share one
// dimension.
func (ix *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		ix.dimension = 0
		ix.vectors = nil
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return errors.New("zero-dimension vector")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return domain.WrapError(domain.ErrInvalidInput, "build index",
				fmt.Errorf("vector dimension mismatch at position %d", i))
		}
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		cp := make([]float32, dim)
		copy(cp, v)
		stored[i] = cp
	}
	ix.dimension = dim
	ix.vectors = stored
	return nil
}

func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Query returns up to k nearest neighbors ordered by ascending squared
// Euclidean distance. Fewer than k results simply means the index holds
// fewer vectors.
func (ix *Index) Query(vector []float32, k int) ([]ports.Neighbor, error) {
	if len(ix.vectors) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyIndex, "query index",
			errors.New("no vectors loaded"))
	}
	if len(vector) != ix.dimension {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query index",
			errors.New("query vector dimension mismatch"))
	}
	if k <= 0 {
		k = 1
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	neighbors := make([]ports.Neighbor, len(ix.vectors))
	for i, v := range ix.vectors {
		neighbors[i] = ports.Neighbor{
			Distance: squaredL2(vector, v),
			Position: i,
		}
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].Distance == neighbors[b].Distance {
			return neighbors[a].Position < neighbors[b].Position
		}
		return neighbors[a].Distance < neighbors[b].Distance
	})
	return neighbors[:k], nil
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
