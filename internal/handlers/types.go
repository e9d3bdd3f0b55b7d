package handlers

import "github.com/shortspan/shortspan/internal/shortener"

// CreateShortURLRequest is the request body for creating a short URL with a
// derived identifier.
type CreateShortURLRequest struct {
	Body struct {
		URL                 string `doc:"The URL to shorten"                                  example:"https://example.com/very/long/path" json:"url"`
		ExpirationTimestamp string `doc:"RFC 3339 time after which the short URL stops resolving" example:"2027-01-02T15:04:05Z"           json:"expiration_timestamp"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Body shortener.ShortenedURL
}

// PutShortURLRequest is the request for storing a URL under a caller-chosen
// identifier.
type PutShortURLRequest struct {
	ID   string `doc:"Caller-chosen short identifier" example:"abc123xy" maxLength:"16" minLength:"6" path:"id"`
	Body struct {
		URL                 string `doc:"The URL to shorten"                                  example:"https://example.com/very/long/path" json:"url"`
		ExpirationTimestamp string `doc:"RFC 3339 time after which the short URL stops resolving" example:"2027-01-02T15:04:05Z"           json:"expiration_timestamp"`
	}
}

// PutShortURLResponse carries the stored mapping; Status is 201 for a fresh
// insert and 200 for an idempotent replay.
type PutShortURLResponse struct {
	Status int
	Body   shortener.ShortenedURL
}

// RedirectRequest is the request for resolving a short identifier.
type RedirectRequest struct {
	ID string `doc:"The short identifier" example:"abc123xy" path:"id"`
}

// RedirectResponse issues the temporary redirect to the long URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location     string `doc:"The long URL"                                      header:"Location"`
		CacheControl string `doc:"Caches may keep the redirect until the mapping expires" header:"Cache-Control"`
	}
}
