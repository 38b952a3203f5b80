package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// DBTX is the part of pgx used by PostgresTable.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresTable stores rows in the entities table (see internal/migrate).
// The version column is the ETag.
type PostgresTable struct {
	db    DBTX
	table string
}

func NewPostgresTable(db DBTX) *PostgresTable {
	return &PostgresTable{db: db, table: "entities"}
}

func (t *PostgresTable) Get(ctx context.Context, partitionKey, rowKey string) (Entity, bool, error) {
	e := Entity{PartitionKey: partitionKey, RowKey: rowKey}
	var version int64
	err := t.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT answer, score, version
		FROM %s
		WHERE partition_key = $1 AND row_key = $2
	`, t.table), partitionKey, rowKey).Scan(&e.Answer, &e.Score, &version)

	if errors.Is(err, pgx.ErrNoRows) {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, fmt.Errorf("get entity: %w", err)
	}
	e.ETag = strconv.FormatInt(version, 10)
	return e, true, nil
}

func (t *PostgresTable) Insert(ctx context.Context, e Entity) error {
	_, err := t.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (partition_key, row_key, answer, score, version)
		VALUES ($1, $2, $3, $4, 1)
	`, t.table), e.PartitionKey, e.RowKey, e.Answer, e.Score)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}
	return nil
}

func (t *PostgresTable) Update(ctx context.Context, e Entity) error {
	if e.ETag == "" {
		tag, err := t.db.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (partition_key, row_key, answer, score, version)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (partition_key, row_key) DO NOTHING
		`, t.table), e.PartitionKey, e.RowKey, e.Answer, e.Score)
		if err != nil {
			return fmt.Errorf("insert entity: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConflict
		}
		return nil
	}

	version, err := strconv.ParseInt(e.ETag, 10, 64)
	if err != nil {
		return ErrConflict
	}

	tag, err := t.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET answer = $3, score = $4, version = version + 1, updated_at = NOW()
		WHERE partition_key = $1 AND row_key = $2 AND version = $5
	`, t.table), e.PartitionKey, e.RowKey, e.Answer, e.Score, version)
	if err != nil {
		return fmt.Errorf("replace entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (t *PostgresTable) Delete(ctx context.Context, partitionKey, rowKey string) error {
	_, err := t.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE partition_key = $1 AND row_key = $2
	`, t.table), partitionKey, rowKey)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	return nil
}

func (t *PostgresTable) DeleteAll(ctx context.Context, partitionKey string, keepScore bool) error {
	_, err := t.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE partition_key = $1 AND (NOT $2 OR row_key <> partition_key)
	`, t.table), partitionKey, keepScore)
	if err != nil {
		return fmt.Errorf("delete partition: %w", err)
	}
	return nil
}
