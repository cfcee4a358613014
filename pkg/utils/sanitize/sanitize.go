package sanitize

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxLength bounds sanitized text when no explicit limit is given
const DefaultMaxLength = 4000

var (
	ErrEmptyInput  = goerr.New("input is empty after sanitization")
	ErrInvalidURL  = goerr.New("invalid URL")
	ErrURLScheme   = goerr.New("URL scheme must be http or https")
	ErrInputTooBig = goerr.New("input exceeds maximum length")
)

// Text strips control characters, normalizes whitespace and enforces the
// length bound. Returns an error when nothing printable remains or the
// input exceeds maxLen (0 means DefaultMaxLength).
func Text(input string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	var sb strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
	}

	cleaned := strings.TrimSpace(sb.String())
	if cleaned == "" {
		return "", goerr.Wrap(ErrEmptyInput, "text sanitization")
	}
	if len(cleaned) > maxLen {
		return "", goerr.Wrap(ErrInputTooBig, "text sanitization",
			goerr.V("length", len(cleaned)),
			goerr.V("max", maxLen))
	}

	return cleaned, nil
}

// URL validates that the input is an absolute http(s) URL with a host
func URL(input string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return "", goerr.Wrap(ErrInvalidURL, "url parse", goerr.V("url", input))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", goerr.Wrap(ErrURLScheme, "url validation", goerr.V("scheme", u.Scheme))
	}
	if u.Host == "" {
		return "", goerr.Wrap(ErrInvalidURL, "url has no host", goerr.V("url", input))
	}
	return u.String(), nil
}
