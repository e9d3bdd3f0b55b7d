package shortener

import (
	"errors"
	"fmt"
	"time"
)

// maxTTL bounds how far in the future an expiration may be set.
const maxTTL = 10 * 365 * 24 * time.Hour

// ErrExpirationInPast is returned when a proposed expiration has already passed.
var ErrExpirationInPast = errors.New("expiration time cannot be in the past")

// TooFarInFutureError reports an expiration beyond the allowed window,
// carrying the maximum time that would have been accepted.
type TooFarInFutureError struct {
	Max time.Time
}

func (e *TooFarInFutureError) Error() string {
	return fmt.Sprintf("expiration time is too far in the future; the current maximum is %s",
		e.Max.Format(time.RFC3339))
}

// ExpirationTime is a validated absolute expiration timestamp. The zero value
// is invalid; construct via NewExpirationTime.
type ExpirationTime struct {
	value time.Time
}

// NewExpirationTime validates proposed against the current wall clock: it must
// not be in the past and must not exceed now plus ten years.
func NewExpirationTime(proposed time.Time) (ExpirationTime, error) {
	now := time.Now().UTC()
	if proposed.Before(now) {
		return ExpirationTime{}, ErrExpirationInPast
	}

	if limit := now.Add(maxTTL); proposed.After(limit) {
		return ExpirationTime{}, &TooFarInFutureError{Max: limit}
	}

	return ExpirationTime{value: proposed}, nil
}

// Time returns the underlying timestamp.
func (e ExpirationTime) Time() time.Time {
	return e.value
}
