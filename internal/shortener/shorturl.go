package shortener

import (
	"net/url"
	"time"
)

// ShortURL is a URL mapping held under a short identifier until it expires.
// Immutable once constructed.
type ShortURL struct {
	ID        ShortID
	URL       *url.URL
	ExpiresAt ExpirationTime
}

// Equal reports whether two mappings are field-for-field identical.
func (s *ShortURL) Equal(other *ShortURL) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.ID == other.ID &&
		s.URL.String() == other.URL.String() &&
		s.ExpiresAt.Time().Equal(other.ExpiresAt.Time())
}

// Shortened converts the mapping into the shape exposed to callers.
func (s *ShortURL) Shortened() *ShortenedURL {
	return &ShortenedURL{
		ShortenedURLID:      s.ID.String(),
		LongURL:             s.URL.String(),
		ExpirationTimestamp: s.ExpiresAt.Time().Format(time.RFC3339),
	}
}

// ShortenedURL is the external representation of a stored mapping.
type ShortenedURL struct {
	ShortenedURLID      string `doc:"The short identifier"                 example:"abc123xy"                    json:"shortened_url_id"`
	LongURL             string `doc:"The stored long URL"                  example:"https://example.com/a/path"  json:"long_url"`
	ExpirationTimestamp string `doc:"RFC 3339 expiration of this mapping"  example:"2027-01-02T15:04:05Z"        json:"expiration_timestamp"`
}

// Redirect is the result of resolving a short identifier.
type Redirect struct {
	URL              string
	RemainingSeconds int64
}

// CreationStatus distinguishes a fresh insert from an idempotent replay.
type CreationStatus string

const (
	// StatusCreated means the mapping was newly persisted.
	StatusCreated CreationStatus = "created"
	// StatusAlreadyExists means an identical mapping was already stored.
	StatusAlreadyExists CreationStatus = "already_exists"
)
