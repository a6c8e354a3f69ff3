package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrExtraction marks failures turning an uploaded payload into plain text.
// Callers match it with errors.Is to translate into an upload-stage error
// rather than a generation failure.
var ErrExtraction = errors.New("content extraction failed")

// Extractor turns a raw uploaded payload into plain text suitable for
// chunking and indexing.
type Extractor interface {
	// Extract returns the plain text of the payload. The mimeType hint comes
	// from the upload request and may be empty.
	Extract(payload []byte, mimeType string) (string, error)
}

type textExtractor struct{}

// NewTextExtractor handles plain text and markdown payloads. Anything that is
// not valid UTF-8 text is rejected with ErrExtraction.
func NewTextExtractor() Extractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(payload []byte, mimeType string) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrExtraction)
	}
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: payload is not valid UTF-8 text (mime %q)", ErrExtraction, mimeType)
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return "", fmt.Errorf("%w: payload contains no text", ErrExtraction)
	}
	return text, nil
}
