package store

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shortspan/shortspan/internal/shortener"
)

// toShortURL rebuilds a persisted row into its domain form. Rows written
// under older validation rules (or racing their own expiration) may fail
// here; callers treat that as an internal fault, never as a conflict.
func toShortURL(id, longURL string, expiresAt time.Time) (*shortener.ShortURL, error) {
	shortID, err := shortener.NewShortID(id)
	if err != nil {
		return nil, fmt.Errorf("stored id %q no longer validates: %w", id, err)
	}

	parsed, err := url.Parse(longURL)
	if err != nil {
		return nil, fmt.Errorf("stored url for %q no longer parses: %w", id, err)
	}

	expiration, err := shortener.NewExpirationTime(expiresAt)
	if err != nil {
		return nil, fmt.Errorf("stored expiration for %q no longer validates: %w", id, err)
	}

	return &shortener.ShortURL{ID: shortID, URL: parsed, ExpiresAt: expiration}, nil
}
