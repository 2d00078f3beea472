package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"selectclass/internal/outbox"
	"selectclass/pkg/response"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS outbox (
			id          TEXT PRIMARY KEY,
			method      TEXT NOT NULL,
			path        TEXT NOT NULL,
			body        TEXT,
			attempts    INTEGER NOT NULL DEFAULT 0,
			last_error  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS outbox_created_at_idx ON outbox (created_at);
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### outbox ####

func (s *Storage) Enqueue(ctx context.Context, e outbox.Entry) error {
	const op = "storage.postgres.Enqueue"

	var body sql.NullString
	if len(e.Body) > 0 {
		body = sql.NullString{String: string(e.Body), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, method, path, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID,
		e.Method,
		e.Path,
		body,
		e.CreatedAt,
	)
	if err != nil {
		var sqlErr *pq.Error
		if errors.As(err, &sqlErr) && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Pending(ctx context.Context, limit, maxAttempts int) ([]outbox.Entry, error) {
	const op = "storage.postgres.Pending"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, path, body, attempts, last_error, created_at
		FROM outbox
		WHERE attempts < $1
		ORDER BY created_at, id
		LIMIT $2`,
		maxAttempts,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var entries []outbox.Entry
	for rows.Next() {
		var e outbox.Entry
		var body, lastError sql.NullString

		err := rows.Scan(&e.ID, &e.Method, &e.Path, &body, &e.Attempts, &lastError, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if body.Valid {
			e.Body = []byte(body.String)
		}
		e.LastError = lastError.String

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	const op = "storage.postgres.Delete"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE id=$1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) MarkFailed(ctx context.Context, id string, errMsg string) error {
	const op = "storage.postgres.MarkFailed"

	res, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`,
		id,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
