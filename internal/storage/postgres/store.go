// Package postgres persists tool invocation audit records in Postgres.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradingtools/internal/model"
)

// Store provides Postgres persistence for tool invocations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutInvocations inserts a batch of tool invocation records.
func (s *Store) PutInvocations(ctx context.Context, records []model.ToolInvocation) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		var arguments, result interface{}
		if len(record.Arguments) > 0 {
			arguments = string(record.Arguments)
		}
		if len(record.Result) > 0 {
			result = string(record.Result)
		}
		batch.Queue(`
			INSERT INTO tool_invocations (
				tool, arguments, result, is_error, error_kind, duration_ms, ts, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7), now())
		`,
			record.Tool,
			arguments,
			result,
			record.IsError,
			record.ErrorKind,
			record.DurationMS,
			record.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
