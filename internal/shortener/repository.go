package shortener

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no live mapping exists for an identifier.
var ErrNotFound = errors.New("short url not found")

// AlreadyExistsError aborts a save that lost to a live mapping under the same
// identifier. Existing carries the current row so callers can compare content.
type AlreadyExistsError struct {
	Existing *ShortURL
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("an item with id %q already exists and is not expired", e.Existing.ID)
}

// Repository owns persistence of ShortURL mappings. Expired rows are removed
// by a separate cleanup job, so implementations must treat logically expired
// rows as absent on reads and recycle them on writes.
type Repository interface {
	// Retrieve returns the live mapping for id. It returns ErrNotFound when
	// no row exists or the row's expiration has passed; any other error is a
	// store fault.
	Retrieve(ctx context.Context, id string) (*ShortURL, error)

	// Save persists candidate atomically. A live mapping under the same
	// identifier aborts the write with *AlreadyExistsError; an expired one is
	// replaced within the same transaction.
	Save(ctx context.Context, candidate *ShortURL) (*ShortURL, error)

	// DeleteExpired removes rows whose expiration has passed and reports how
	// many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
