package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

// SupportedExtension reports whether a filename can be ingested. Checked
// before any storage or chunking work.
type SupportedExtension func(filename string) bool

type IngestService struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	supported SupportedExtension
}

func NewIngestService(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	supported SupportedExtension,
) *IngestService {
	return &IngestService{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		supported: supported,
	}
}

func (s *IngestService) Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("filename is required"))
	}
	if s.supported != nil && !s.supported(filename) {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload document",
			fmt.Errorf("extension %q", filepath.Ext(filename)))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("documents/%s/%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := s.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := s.queue.PublishCorpusChanged(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish corpus event: %w", err)
	}

	slog.Info("document_uploaded", "document_id", doc.ID, "filename", doc.Filename)
	return doc, nil
}

func (s *IngestService) Remove(ctx context.Context, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Remove(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("remove stored object: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.queue.PublishCorpusChanged(ctx, id); err != nil {
		return fmt.Errorf("publish corpus event: %w", err)
	}

	slog.Info("document_removed", "document_id", id)
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
