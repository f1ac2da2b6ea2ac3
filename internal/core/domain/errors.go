package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat: the file extension is neither plain text nor PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrDecode: the document body is not valid UTF-8 text.
	ErrDecode = errors.New("malformed text encoding")
	// ErrAuthentication: missing or rejected embedding-service credential.
	// A configuration problem; retrying does not help.
	ErrAuthentication = errors.New("authentication failed")
	// ErrServiceUnavailable: transient remote failure, retryable by the caller.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrEmptyIndex: a query arrived before any document was indexed.
	ErrEmptyIndex = errors.New("vector index is empty")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
