package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogLoad    = errors.New("catalog load failed")
	ErrEmptyCatalog   = errors.New("catalog has no complete records")
	ErrBookNotFound   = errors.New("book not found")
	ErrAmbiguousTitle = errors.New("ambiguous title")
	ErrMalformedQuery = errors.New("malformed query")
	ErrUnknownBook    = errors.New("unknown book id")
	ErrCoverFetch     = errors.New("cover fetch failed")
	ErrCoverDecode    = errors.New("cover decode failed")
)

// ResolutionError reports a title that did not resolve to exactly one book.
// It matches ErrBookNotFound or ErrAmbiguousTitle with errors.Is.
type ResolutionError struct {
	Resolution Resolution
}

func (e *ResolutionError) Error() string {
	switch e.Resolution.Outcome {
	case OutcomeAmbiguous:
		return fmt.Sprintf("%s: %q matches %d titles", ErrAmbiguousTitle, e.Resolution.Query, len(e.Resolution.Candidates))
	default:
		return fmt.Sprintf("%s: %q", ErrBookNotFound, e.Resolution.Query)
	}
}

func (e *ResolutionError) Unwrap() error {
	if e.Resolution.Outcome == OutcomeAmbiguous {
		return ErrAmbiguousTitle
	}
	return ErrBookNotFound
}

// ErrorKind names the error class for logs, metrics and API payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAmbiguousTitle):
		return "ambiguous"
	case errors.Is(err, ErrBookNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedQuery):
		return "malformed_query"
	case errors.Is(err, ErrUnknownBook):
		return "unknown_book"
	case errors.Is(err, ErrCoverFetch):
		return "network"
	case errors.Is(err, ErrCoverDecode):
		return "decode"
	case errors.Is(err, ErrCatalogLoad), errors.Is(err, ErrEmptyCatalog):
		return "catalog"
	default:
		return "internal"
	}
}
