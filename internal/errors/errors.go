// internal/errors/errors.go
package errors

import (
	"context"
	"fmt"
	"time"
)

// ErrTimeout is returned when an aggregate trending fetch outlives its deadline.
// It is distinct from an empty result and should be surfaced as degraded service.
type ErrTimeout struct {
	After time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("trending fetch timed out after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error {
	return context.DeadlineExceeded
}

// ErrInvalidSort is returned when a sort option is not one of the supported values.
type ErrInvalidSort struct {
	Sort string
}

func (e *ErrInvalidSort) Error() string {
	return fmt.Sprintf("invalid sort option: %q, expected one of stars, updated, forks, created, help-wanted-issues", e.Sort)
}

// ErrInvalidCategory is returned when a category label or slug is unknown.
type ErrInvalidCategory struct {
	Category string
}

func (e *ErrInvalidCategory) Error() string {
	return fmt.Sprintf("invalid category: %q", e.Category)
}
