package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by the postgres backend.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStorage struct {
	db DBTX
}

// NewPostgresStorage creates the local_storage table if needed.
func NewPostgresStorage(ctx context.Context, db DBTX) (Storage, error) {
	query := `
	CREATE TABLE IF NOT EXISTS local_storage (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create local_storage table: %w", err)
	}

	return &postgresStorage{db: db}, nil
}

func (s *postgresStorage) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM local_storage WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get item %s: %w", key, err)
	}
	return value, nil
}

func (s *postgresStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO local_storage (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key)
	DO UPDATE SET value = $2, updated_at = now()`
	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}
	return nil
}

func (s *postgresStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM local_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}
	return nil
}
