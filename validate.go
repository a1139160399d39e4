package html2pdf

import (
	"fmt"
	"unicode/utf8"
)

// ValidHTML reports whether html is acceptable input: non-empty, valid UTF-8,
// and at most maxBytes long. A maxBytes <= 0 uses DefaultMaxHTMLBytes.
func ValidHTML(html string, maxBytes int) bool {
	return checkHTML(html, maxBytes) == nil
}

// checkHTML is ValidHTML with the reason for rejection.
func checkHTML(html string, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHTMLBytes
	}
	if html == "" {
		return ErrEmptyHTML
	}
	if len(html) > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrHTMLTooLarge, len(html), maxBytes)
	}
	if !utf8.ValidString(html) {
		return ErrInvalidHTML
	}
	return nil
}

// Validate checks the request against maxBytes.
//
// This is the trust boundary for library callers building Request by hand;
// the HTTP layer relies on it too rather than re-validating.
func (r Request) Validate(maxBytes int) error {
	if err := checkHTML(r.HTML, maxBytes); err != nil {
		return err
	}
	switch r.FooterDisplay {
	case FooterAll, FooterFirstPageOnly:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidFooterDisplay, r.FooterDisplay)
	}
}
