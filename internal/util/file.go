package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType sniffs the real MIME type of an upload against an
// allowlist of prefixes or full types, e.g. "image/", "application/pdf".
// The returned reader replays the sniffed bytes ahead of the rest of the
// stream, so callers keep reading from it instead of the original.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}

	mimeType := http.DetectContentType(buffer[:n])
	replay := io.MultiReader(bytes.NewReader(buffer[:n]), reader)

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, replay, nil
		}
	}

	return mimeType, replay, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}
