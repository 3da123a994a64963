package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the herald domain.
// These errors can be checked with errors.Is.
var (
	// ErrConfiguration is the parent of every error that must abort a run
	// before the first message is sent.
	ErrConfiguration = errors.New("herald: invalid configuration")

	// ErrNoTemplates is returned when a profile has an empty template list.
	ErrNoTemplates = fmt.Errorf("%w: profile has no templates", ErrConfiguration)

	// ErrProfileNotFound is returned when the requested profile is not stored.
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrConfiguration)

	// ErrInvalidURLParam is returned for an unknown URL parameter token.
	ErrInvalidURLParam = fmt.Errorf("%w: invalid url parameter", ErrConfiguration)

	// ErrMissingRequiredColumn is returned when the recipient source lacks
	// the phone or message column.
	ErrMissingRequiredColumn = fmt.Errorf("%w: required column missing", ErrConfiguration)

	// ErrMissingColumn is returned when a Column URL parameter references a
	// field the recipient does not have. It fails only the affected item.
	ErrMissingColumn = errors.New("herald: column not found for url parameter")

	// ErrRunInProgress is returned when a coordinator is asked to run while
	// a previous run has not finished.
	ErrRunInProgress = errors.New("herald: run already in progress")
)
