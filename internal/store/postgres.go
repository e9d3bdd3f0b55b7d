package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shortspan/shortspan/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed repository.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Retrieve(ctx context.Context, id string) (*shortener.ShortURL, error) {
	query := `
		SELECT id, long_url, expiration_time
		FROM short_urls
		WHERE id = $1
	`

	var (
		rowID     string
		longURL   string
		expiresAt time.Time
	)

	err := p.pool.QueryRow(ctx, query, id).Scan(&rowID, &longURL, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("query short url: %w", err)
	}

	// The cleanup job deletes expired rows asynchronously, so a row may
	// outlive its expiration; such a row counts as absent.
	if !expiresAt.After(time.Now()) {
		return nil, shortener.ErrNotFound
	}

	return toShortURL(rowID, longURL, expiresAt)
}

func (p *PostgresStore) Save(ctx context.Context, candidate *shortener.ShortURL) (*shortener.ShortURL, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback(ctx) }()

	// FOR UPDATE serializes concurrent writers targeting the same id.
	var (
		rowID     string
		longURL   string
		expiresAt time.Time
	)

	err = tx.QueryRow(ctx, `
		SELECT id, long_url, expiration_time
		FROM short_urls
		WHERE id = $1
		FOR UPDATE
	`, candidate.ID.String()).Scan(&rowID, &longURL, &expiresAt)

	switch {
	case err == nil:
		if !expiresAt.Before(time.Now()) {
			existing, convErr := toShortURL(rowID, longURL, expiresAt)
			if convErr != nil {
				return nil, fmt.Errorf("reload existing row: %w", convErr)
			}

			return nil, &shortener.AlreadyExistsError{Existing: existing}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM short_urls WHERE id = $1`, rowID); err != nil {
			return nil, fmt.Errorf("delete expired row: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// No current row; fall through to the insert.
	default:
		return nil, fmt.Errorf("query existing row: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO short_urls (id, long_url, expiration_time)
		VALUES ($1, $2, $3)
	`, candidate.ID.String(), candidate.URL.String(), candidate.ExpiresAt.Time())
	if err != nil {
		return nil, fmt.Errorf("insert short url: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return candidate, nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM short_urls WHERE expiration_time <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired rows: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
