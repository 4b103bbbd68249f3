package api

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

const (
	MediaTypeAny   = "*/*"
	MediaTypeJSON  = "application/json"
	MediaTypeLumen = "application/x-lumen"
	MediaTypeText  = "text/plain"
)

type ErrUnsupportedMimeType struct {
	Type string
}

func (m *ErrUnsupportedMimeType) Error() string {
	return fmt.Sprintf("unsupported MIME type: %s", m.Type)
}

// Body formats of a request.
const (
	BodyJSON   = "json"
	BodySource = "source"
)

// MediaTypeToBody returns the body format of a request with content type
// s.  A JSON body holds a request object; a source body is program text
// with the remaining request fields taken from the query string.  An
// empty or wildcard type means JSON.
func MediaTypeToBody(s string) (string, error) {
	if s = strings.TrimSpace(s); s == "" {
		return BodyJSON, nil
	}
	typ, _, err := mime.ParseMediaType(s)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", err
	}
	switch typ {
	case MediaTypeAny, MediaTypeJSON:
		return BodyJSON, nil
	case MediaTypeLumen, MediaTypeText:
		return BodySource, nil
	}
	return "", &ErrUnsupportedMimeType{typ}
}
