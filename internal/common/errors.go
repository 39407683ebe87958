// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Dashboard state guards.
	ErrLoadInProgress         = errors.New("dashboard load already in progress")
	ErrOptimizationInProgress = errors.New("optimization run already in progress")
	ErrActionPending          = errors.New("an action for this recommendation is already in flight")
	ErrBusy                   = errors.New("dashboard is busy")

	// Working set lookups.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrNotFound               = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the operator-facing text for err: the message of the
// outermost UserError if there is one, otherwise err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Error()
	}
	return err.Error()
}
