package query

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTermSize bounds search terms coming from HTTP, MCP or the CLI.
	DefaultMaxTermSize = 256
	// EnvMaxTermSize is the environment variable to override the default
	EnvMaxTermSize = "ARBOR_MAX_TERM_SIZE"
)

var (
	ErrTermTooLarge = errors.New("search term exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("search term contains invalid UTF-8 sequences")
)

// SanitizeTerm cleans a user search term. Oversized or invalid terms are
// rejected rather than truncated. Control characters are removed and the
// result is trimmed.
func SanitizeTerm(term string) (string, error) {
	limit := maxTermSize()
	if len(term) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTermTooLarge, len(term), limit)
	}
	if !utf8.ValidString(term) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(term, unicode.IsControl) < 0 {
		return strings.TrimSpace(term), nil
	}

	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func maxTermSize() int {
	if val := os.Getenv(EnvMaxTermSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTermSize
}
