// Package extractor turns stored documents into raw text, dispatching on
// the filename extension.
package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/akulikov/research-assistant/internal/core/domain"
	"github.com/akulikov/research-assistant/internal/core/ports"
)

type Loader struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Loader {
	return &Loader{storage: storage}
}

// SupportedExtension reports whether a filename can be loaded at all.
// Used by ingestion to fail fast before any storage or embedding work.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".pdf":
		return true
	default:
		return false
	}
}

func (l *Loader) Load(ctx context.Context, doc *domain.Document) (string, error) {
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".txt":
		return l.loadPlaintext(ctx, doc)
	case ".pdf":
		return l.loadPDF(ctx, doc)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "load document",
			errors.New(doc.Filename))
	}
}
