package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

func (l *Loader) loadPlaintext(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := l.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrDecode, "decode plaintext",
			errors.New(doc.Filename))
	}
	return string(raw), nil
}
