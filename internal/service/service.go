// Package service holds the use cases behind the HTTP API. Services
// validate input, call the repositories, reload aggregates and announce
// changes on the live feed.
package service

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/lalith-99/clientdesk/internal/errors"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// systemClock is time.Now at the precision Postgres stores, so an entity
// returned from a write matches what a later read returns.
func systemClock() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// storeErr classifies a repository failure. Coded errors and context
// cancellation pass through; anything else means the store is unavailable.
func storeErr(msg string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.Unavailable(msg, err)
}
