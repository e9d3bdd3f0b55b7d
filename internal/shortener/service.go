package shortener

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// postAttempts bounds the identifier derivation loop in Post.
const postAttempts = 3

var (
	// ErrInvalidTimestamp is returned when an expiration timestamp does not
	// parse as RFC 3339.
	ErrInvalidTimestamp = errors.New("failed to parse timestamp")
	// ErrInvalidURL is returned when a long URL does not parse or lacks a
	// scheme or host.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrShortIDTaken is returned when the requested identifier is bound to
	// different content that has not expired.
	ErrShortIDTaken = errors.New("short ID is already taken")
	// ErrRetriesExhausted is returned when Post runs out of derivation
	// attempts without claiming an identifier.
	ErrRetriesExhausted = errors.New("exhausted short ID allocation attempts")
)

// IsValidationError reports whether err was caused by caller-supplied input
// failing validation, as opposed to a conflict or a store fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrExpirationInPast) ||
		isShortIDError(err) ||
		isTooFarInFuture(err)
}

func isShortIDError(err error) bool {
	var (
		lengthErr *InvalidLengthError
		charsErr  *InvalidCharactersError
	)

	return errors.As(err, &lengthErr) || errors.As(err, &charsErr)
}

func isTooFarInFuture(err error) bool {
	var futureErr *TooFarInFutureError

	return errors.As(err, &futureErr)
}

// Service exposes the shortener operations to the transport layer.
type Service interface {
	// Get resolves a short identifier into a redirect target with its
	// remaining lifetime. Returns ErrNotFound for absent or expired entries.
	Get(ctx context.Context, id string) (*Redirect, error)

	// Put stores a mapping under a caller-chosen identifier. Resubmitting an
	// identical mapping succeeds with StatusAlreadyExists; an identifier
	// bound to different live content fails with ErrShortIDTaken.
	Put(ctx context.Context, id, rawURL, rawTimestamp string) (*ShortenedURL, CreationStatus, error)

	// Post derives an identifier from the payload itself and delegates to
	// Put, re-salting on collision up to a fixed number of attempts.
	Post(ctx context.Context, rawURL, rawTimestamp string) (*ShortenedURL, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a Service backed by the given repository.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Get(ctx context.Context, id string) (*Redirect, error) {
	shortURL, err := s.repo.Retrieve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("retrieve %q: %w", id, err)
	}

	// The cleanup job may not have caught up with an entry that expired
	// mid-request; clamp instead of erroring.
	remaining := time.Until(shortURL.ExpiresAt.Time())
	if remaining < 0 {
		remaining = 0
	}

	return &Redirect{
		URL:              shortURL.URL.String(),
		RemainingSeconds: int64(remaining / time.Second),
	}, nil
}

func (s *service) Put(ctx context.Context, id, rawURL, rawTimestamp string) (*ShortenedURL, CreationStatus, error) {
	candidate, err := buildCandidate(id, rawURL, rawTimestamp)
	if err != nil {
		return nil, "", err
	}

	saved, err := s.repo.Save(ctx, candidate)
	if err != nil {
		var exists *AlreadyExistsError
		if errors.As(err, &exists) {
			if candidate.Equal(exists.Existing) {
				// Identical resubmission; hand back the stored entry.
				return exists.Existing.Shortened(), StatusAlreadyExists, nil
			}

			return nil, "", ErrShortIDTaken
		}

		return nil, "", fmt.Errorf("save %q: %w", id, err)
	}

	return saved.Shortened(), StatusCreated, nil
}

func (s *service) Post(ctx context.Context, rawURL, rawTimestamp string) (*ShortenedURL, error) {
	salt := zeroSalt

	for attempt := 1; attempt <= postAttempts; attempt++ {
		id := deriveID(&salt, rawURL, rawTimestamp)

		shortened, _, err := s.Put(ctx, id, rawURL, rawTimestamp)

		switch {
		case err == nil:
			// A dedupe hit via StatusAlreadyExists is just as successful as
			// a fresh insert.
			return shortened, nil
		case errors.Is(err, ErrShortIDTaken):
			s.logger.Warn("derived short ID is already taken",
				zap.String("id", id),
				zap.Int("attempt", attempt),
			)
		case isShortIDError(err):
			// Either a derivation bug or a digest whose low bytes encode
			// below the minimum identifier length.
			s.logger.Warn("derived an invalid short ID",
				zap.String("id", id),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		case IsValidationError(err):
			return nil, err
		default:
			s.logger.Error("delegated PUT failed", zap.Error(err))

			return nil, err
		}

		// A random salt breaks the tie on the next attempt.
		if _, err := rand.Read(salt[:]); err != nil {
			return nil, fmt.Errorf("resalt: %w", err)
		}
	}

	return nil, ErrRetriesExhausted
}

func buildCandidate(id, rawURL, rawTimestamp string) (*ShortURL, error) {
	expiresAt, err := time.Parse(time.RFC3339, rawTimestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	longURL, err := parseLongURL(rawURL)
	if err != nil {
		return nil, err
	}

	shortID, err := NewShortID(id)
	if err != nil {
		return nil, err
	}

	expiration, err := NewExpirationTime(expiresAt.UTC())
	if err != nil {
		return nil, err
	}

	return &ShortURL{ID: shortID, URL: longURL, ExpiresAt: expiration}, nil
}

func parseLongURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	return u, nil
}
