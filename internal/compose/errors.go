package compose

import (
	"errors"
	"fmt"
)

var (
	// Request validation errors
	ErrNoName    = errors.New("target name cannot be empty")
	ErrNoSources = errors.New("target has no source files")
)

// UnknownLanguageError reports a selection referencing a language absent from
// the registry. It aborts the whole composition; no partial graph is emitted.
type UnknownLanguageError struct {
	Language string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language: %s", e.Language)
}

// DuplicateProviderKeyError reports two providers claiming the same key in one
// request's provides table. This is a defect in language-definition
// registration, not a per-request recoverable condition.
type DuplicateProviderKeyError struct {
	Key string
}

func (e *DuplicateProviderKeyError) Error() string {
	return fmt.Sprintf("duplicate provider key: %s", e.Key)
}
