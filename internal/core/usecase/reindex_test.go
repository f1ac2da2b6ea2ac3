package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

type searcherFake struct {
	loaded [][]domain.Document
	err    error
}

func (s *searcherFake) LoadDocuments(_ context.Context, docs []domain.Document) error {
	if s.err != nil {
		return s.err
	}
	s.loaded = append(s.loaded, docs)
	return nil
}

func (s *searcherFake) Search(context.Context, string, int) (string, error) {
	return "", nil
}

type listRepoFake struct {
	ingestRepoFake
	docs    []domain.Document
	listErr error
}

func (r *listRepoFake) List(context.Context) ([]domain.Document, error) {
	return r.docs, r.listErr
}

func TestRebuildLoadsAllPersistedDocuments(t *testing.T) {
	repo := &listRepoFake{docs: []domain.Document{
		{ID: "d1", Filename: "a.txt"},
		{ID: "d2", Filename: "b.pdf"},
	}}
	searcher := &searcherFake{}
	svc := NewReindexService(repo, searcher)

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if len(searcher.loaded) != 1 {
		t.Fatalf("expected one wholesale load, got %d", len(searcher.loaded))
	}
	if len(searcher.loaded[0]) != 2 {
		t.Fatalf("expected both documents loaded, got %d", len(searcher.loaded[0]))
	}
}

func TestRebuildPropagatesListFailure(t *testing.T) {
	repo := &listRepoFake{listErr: errors.New("db down")}
	svc := NewReindexService(repo, &searcherFake{})

	if err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRebuildPropagatesLoadFailure(t *testing.T) {
	repo := &listRepoFake{docs: []domain.Document{{ID: "d1"}}}
	searcher := &searcherFake{err: errors.New("embedder down")}
	svc := NewReindexService(repo, searcher)

	if err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
