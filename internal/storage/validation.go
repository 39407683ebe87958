// Package storage provides the data persistence layer for stockroom.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/stockroom/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidEntry = errors.New("invalid journal entry")
	ErrInvalidLimit = errors.New("limit must not be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntry validates a journal entry before it is written.
func validateEntry(entry service.JournalEntry) error {
	if strings.TrimSpace(entry.Kind) == "" {
		return fmt.Errorf("%w: missing kind", ErrInvalidEntry)
	}

	switch entry.Outcome {
	case service.OutcomeSucceeded, service.OutcomeFailed, service.OutcomeIgnored:
	default:
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidEntry, entry.Outcome)
	}

	if entry.Outcome == service.OutcomeFailed && entry.Error == "" {
		return fmt.Errorf("%w: failed entry without error", ErrInvalidEntry)
	}
	return nil
}
