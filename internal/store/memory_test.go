package store_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shortspan/shortspan/internal/shortener"
	"github.com/shortspan/shortspan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShortURL(t *testing.T, id, rawURL string, expiresIn time.Duration) *shortener.ShortURL {
	t.Helper()

	shortID, err := shortener.NewShortID(id)
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	expiration, err := shortener.NewExpirationTime(time.Now().UTC().Add(expiresIn))
	require.NoError(t, err)

	return &shortener.ShortURL{ID: shortID, URL: parsed, ExpiresAt: expiration}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and retrieve", func(t *testing.T) {
		s := store.NewMemoryStore()
		candidate := newShortURL(t, "memtest1", "https://example.com", time.Hour)

		saved, err := s.Save(ctx, candidate)
		require.NoError(t, err)
		assert.True(t, saved.Equal(candidate))

		got, err := s.Retrieve(ctx, "memtest1")
		require.NoError(t, err)
		assert.True(t, got.Equal(candidate))
	})

	t.Run("retrieve absent id returns ErrNotFound", func(t *testing.T) {
		s := store.NewMemoryStore()

		_, err := s.Retrieve(ctx, "missing1")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("retrieve filters logically expired rows", func(t *testing.T) {
		s := store.NewMemoryStore()
		candidate := newShortURL(t, "memexp1", "https://example.com", 30*time.Millisecond)

		_, err := s.Save(ctx, candidate)
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		_, err = s.Retrieve(ctx, "memexp1")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("save is rejected while a live row holds the id", func(t *testing.T) {
		s := store.NewMemoryStore()
		first := newShortURL(t, "memdup1", "https://example.com", time.Hour)
		second := newShortURL(t, "memdup1", "https://other.example.com", time.Hour)

		_, err := s.Save(ctx, first)
		require.NoError(t, err)

		_, err = s.Save(ctx, second)

		var exists *shortener.AlreadyExistsError
		require.ErrorAs(t, err, &exists)
		assert.True(t, exists.Existing.Equal(first))

		// The stored row is unchanged.
		got, err := s.Retrieve(ctx, "memdup1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.URL.String())
	})

	t.Run("save recycles an expired slot", func(t *testing.T) {
		s := store.NewMemoryStore()
		old := newShortURL(t, "memrecyc1", "https://old.example.com", 30*time.Millisecond)

		_, err := s.Save(ctx, old)
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		fresh := newShortURL(t, "memrecyc1", "https://new.example.com", time.Hour)

		_, err = s.Save(ctx, fresh)
		require.NoError(t, err)

		got, err := s.Retrieve(ctx, "memrecyc1")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example.com", got.URL.String())
	})

	t.Run("delete expired removes only expired rows", func(t *testing.T) {
		s := store.NewMemoryStore()

		_, err := s.Save(ctx, newShortURL(t, "memgc1", "https://example.com/1", 30*time.Millisecond))
		require.NoError(t, err)
		_, err = s.Save(ctx, newShortURL(t, "memgc2", "https://example.com/2", time.Hour))
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		deleted, err := s.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = s.Retrieve(ctx, "memgc1")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = s.Retrieve(ctx, "memgc2")
		assert.NoError(t, err)
	})
}
