package shortener_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shortspan/shortspan/internal/shortener"
	"github.com/shortspan/shortspan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLongURL = "https://example.com/very/long/path"

func newTestService(repo shortener.Repository) shortener.Service {
	return shortener.NewService(repo, zap.NewNop())
}

func timestampIn(d time.Duration) string {
	return time.Now().UTC().Add(d).Format(time.RFC3339)
}

// failingRepo reports a store fault on every operation.
type failingRepo struct {
	err error
}

func (r *failingRepo) Retrieve(_ context.Context, _ string) (*shortener.ShortURL, error) {
	return nil, r.err
}

func (r *failingRepo) Save(_ context.Context, _ *shortener.ShortURL) (*shortener.ShortURL, error) {
	return nil, r.err
}

func (r *failingRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, r.err
}

// conflictingRepo rejects the first conflicts saves with an existing entry
// bound to an unrelated URL, then accepts.
type conflictingRepo struct {
	conflicts int
	saveCalls int
}

func (r *conflictingRepo) Retrieve(_ context.Context, _ string) (*shortener.ShortURL, error) {
	return nil, shortener.ErrNotFound
}

func (r *conflictingRepo) Save(_ context.Context, candidate *shortener.ShortURL) (*shortener.ShortURL, error) {
	r.saveCalls++

	if r.saveCalls <= r.conflicts {
		unrelated, _ := url.Parse("https://unrelated.example.com")
		existing := *candidate
		existing.URL = unrelated

		return nil, &shortener.AlreadyExistsError{Existing: &existing}
	}

	return candidate, nil
}

func (r *conflictingRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func TestServiceGet(t *testing.T) {
	t.Run("returns redirect with remaining lifetime", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		service := newTestService(memStore)

		_, _, err := service.Put(context.Background(), "testurl123", testLongURL, timestampIn(24*time.Hour))
		require.NoError(t, err)

		redirect, err := service.Get(context.Background(), "testurl123")

		require.NoError(t, err)
		assert.Equal(t, testLongURL, redirect.URL)
		// Slight tolerance in case of slow tests.
		assert.GreaterOrEqual(t, redirect.RemainingSeconds, int64(86395))
		assert.LessOrEqual(t, redirect.RemainingSeconds, int64(86400))
	})

	t.Run("returns ErrNotFound for absent id", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, err := service.Get(context.Background(), "missing123")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("propagates store faults distinct from not found", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		service := newTestService(&failingRepo{err: storeErr})

		_, err := service.Get(context.Background(), "testurl123")

		require.Error(t, err)
		assert.NotErrorIs(t, err, shortener.ErrNotFound)
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestServicePut(t *testing.T) {
	t.Run("creates a new mapping", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		shortened, status, err := service.Put(context.Background(), "newurl123", testLongURL, timestamp)

		require.NoError(t, err)
		assert.Equal(t, shortener.StatusCreated, status)
		assert.Equal(t, "newurl123", shortened.ShortenedURLID)
		assert.Equal(t, testLongURL, shortened.LongURL)
		assert.Equal(t, timestamp, shortened.ExpirationTimestamp)
	})

	t.Run("replays an identical submission idempotently", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		first, status1, err1 := service.Put(context.Background(), "existurl123", testLongURL, timestamp)
		second, status2, err2 := service.Put(context.Background(), "existurl123", testLongURL, timestamp)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, shortener.StatusCreated, status1)
		assert.Equal(t, shortener.StatusAlreadyExists, status2)
		assert.Equal(t, first, second)
	})

	t.Run("rejects an id bound to a different url", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		_, _, err := service.Put(context.Background(), "takenurl123", testLongURL, timestamp)
		require.NoError(t, err)

		_, _, err = service.Put(context.Background(), "takenurl123", "https://other.example.com", timestamp)

		assert.ErrorIs(t, err, shortener.ErrShortIDTaken)
	})

	t.Run("rejects an id bound to the same url with a different expiration", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, _, err := service.Put(context.Background(), "takenurl123", testLongURL, timestampIn(24*time.Hour))
		require.NoError(t, err)

		_, _, err = service.Put(context.Background(), "takenurl123", testLongURL, timestampIn(48*time.Hour))

		assert.ErrorIs(t, err, shortener.ErrShortIDTaken)
	})

	t.Run("rejects an invalid short id", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, _, err := service.Put(context.Background(), "invalid_chars", testLongURL, timestampIn(time.Hour))

		var charsErr *shortener.InvalidCharactersError
		require.ErrorAs(t, err, &charsErr)
		assert.Equal(t, "_", charsErr.Chars)
		assert.True(t, shortener.IsValidationError(err))
	})

	t.Run("rejects an invalid url", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, _, err := service.Put(context.Background(), "valid123", "not a url", timestampIn(time.Hour))

		assert.ErrorIs(t, err, shortener.ErrInvalidURL)
	})

	t.Run("rejects an unparseable timestamp", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, _, err := service.Put(context.Background(), "valid123", testLongURL, "invalid-timestamp")

		assert.ErrorIs(t, err, shortener.ErrInvalidTimestamp)
	})

	t.Run("rejects an expiration in the past", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, _, err := service.Put(context.Background(), "valid123", testLongURL, timestampIn(-24*time.Hour))

		assert.ErrorIs(t, err, shortener.ErrExpirationInPast)
	})

	t.Run("propagates store faults", func(t *testing.T) {
		storeErr := errors.New("test failure")
		service := newTestService(&failingRepo{err: storeErr})

		_, _, err := service.Put(context.Background(), "testurl123", testLongURL, timestampIn(time.Hour))

		require.ErrorIs(t, err, storeErr)
		assert.False(t, shortener.IsValidationError(err))
		assert.NotErrorIs(t, err, shortener.ErrShortIDTaken)
	})
}

func TestServicePost(t *testing.T) {
	t.Run("creates a mapping under a derived id", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		shortened, err := service.Post(context.Background(), testLongURL, timestamp)

		require.NoError(t, err)
		assert.Equal(t, testLongURL, shortened.LongURL)
		assert.Equal(t, timestamp, shortened.ExpirationTimestamp)
		assert.GreaterOrEqual(t, len(shortened.ShortenedURLID), 6)
		assert.LessOrEqual(t, len(shortened.ShortenedURLID), 16)
	})

	t.Run("repeated identical posts dedupe onto one id", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		first, err1 := service.Post(context.Background(), testLongURL, timestamp)
		second, err2 := service.Post(context.Background(), testLongURL, timestamp)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first.ShortenedURLID, second.ShortenedURLID)
		assert.Equal(t, first, second)
	})

	t.Run("different payloads derive different ids", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		timestamp := timestampIn(24 * time.Hour)

		first, err1 := service.Post(context.Background(), testLongURL, timestamp)
		second, err2 := service.Post(context.Background(), "https://other.example.com", timestamp)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, first.ShortenedURLID, second.ShortenedURLID)
	})

	t.Run("re-salts past a genuine collision", func(t *testing.T) {
		repo := &conflictingRepo{conflicts: 2}
		service := newTestService(repo)

		shortened, err := service.Post(context.Background(), testLongURL, timestampIn(24*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, 3, repo.saveCalls)
		assert.Equal(t, testLongURL, shortened.LongURL)
	})

	t.Run("gives up after three collisions", func(t *testing.T) {
		repo := &conflictingRepo{conflicts: 3}
		service := newTestService(repo)

		_, err := service.Post(context.Background(), testLongURL, timestampIn(24*time.Hour))

		assert.ErrorIs(t, err, shortener.ErrRetriesExhausted)
		assert.Equal(t, 3, repo.saveCalls)
	})

	t.Run("does not retry validation failures", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())

		_, err := service.Post(context.Background(), "not a url", timestampIn(time.Hour))
		assert.ErrorIs(t, err, shortener.ErrInvalidURL)

		_, err = service.Post(context.Background(), testLongURL, "invalid-timestamp")
		assert.ErrorIs(t, err, shortener.ErrInvalidTimestamp)

		_, err = service.Post(context.Background(), testLongURL, timestampIn(-time.Hour))
		assert.ErrorIs(t, err, shortener.ErrExpirationInPast)
	})

	t.Run("does not retry store faults", func(t *testing.T) {
		storeErr := errors.New("test failure")
		service := newTestService(&failingRepo{err: storeErr})

		_, err := service.Post(context.Background(), testLongURL, timestampIn(time.Hour))

		assert.ErrorIs(t, err, storeErr)
	})
}
