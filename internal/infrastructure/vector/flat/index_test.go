package flat

import (
	"testing"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

func buildIndex(t *testing.T, vectors [][]float32) *Index {
	t.Helper()
	ix := New()
	if err := ix.Build(vectors); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return ix
}

func TestQueryEmptyIndex(t *testing.T) {
	ix := New()
	_, err := ix.Query([]float32{1, 0}, 3)
	if !domain.IsKind(err, domain.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestQueryOrdering(t *testing.T) {
	ix := buildIndex(t, [][]float32{
		{10, 0}, // dist 100 from origin
		{1, 0},  // dist 1
		{3, 0},  // dist 9
	})

	got, err := ix.Query([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	wantPositions := []int{1, 2, 0}
	wantDistances := []float64{1, 9, 100}
	for i := range got {
		if got[i].Position != wantPositions[i] {
			t.Fatalf("result %d position = %d, want %d", i, got[i].Position, wantPositions[i])
		}
		if got[i].Distance != wantDistances[i] {
			t.Fatalf("result %d distance = %v, want %v", i, got[i].Distance, wantDistances[i])
		}
	}
}

func TestQueryKLargerThanIndex(t *testing.T) {
	ix := buildIndex(t, [][]float32{{1, 0}, {0, 1}})

	got, err := ix.Query([]float32{0, 0}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Fatalf("results not sorted ascending: %v", got)
		}
	}
	for _, n := range got {
		if n.Position < 0 || n.Position >= ix.Len() {
			t.Fatalf("invalid position %d", n.Position)
		}
	}
}

func TestBuildReplacesPriorContents(t *testing.T) {
	ix := buildIndex(t, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err := ix.Build([][]float32{{5, 5}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ix.Len() != 1 {
		t.Fatalf("Len() = %d after rebuild, want 1", ix.Len())
	}

	got, err := ix.Query([]float32{5, 5}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].Position != 0 || got[0].Distance != 0 {
		t.Fatalf("unexpected results after rebuild: %v", got)
	}
}

func TestBuildEmptyClearsIndex(t *testing.T) {
	ix := buildIndex(t, [][]float32{{1, 0}})
	if err := ix.Build(nil); err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if ix.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", ix.Len())
	}
	if _, err := ix.Query([]float32{1, 0}, 1); !domain.IsKind(err, domain.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex after clearing, got %v", err)
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	ix := New()
	err := ix.Build([][]float32{{1, 0}, {1, 0, 0}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQueryDimensionMismatch(t *testing.T) {
	ix := buildIndex(t, [][]float32{{1, 0}})
	_, err := ix.Query([]float32{1, 0, 0}, 1)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
