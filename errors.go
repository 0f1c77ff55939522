package reflow

import (
	"errors"

	"github.com/tsawler/reflow/format"
)

var (
	// ErrMalformedInput is returned when the input is not a readable PDF or
	// DOCX document, or its internal structure is broken.
	ErrMalformedInput = errors.New("malformed input")

	// ErrFeatureUnavailable is returned when a conversion asks for a
	// backend this build does not provide.
	ErrFeatureUnavailable = errors.New("feature unavailable")

	// ErrTooLarge is returned by input validation when a document exceeds
	// the configured size limit. Conversions themselves never return it.
	ErrTooLarge = format.ErrTooLarge
)
