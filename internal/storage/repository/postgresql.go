// Package repository implements the PostgreSQL-backed storage for users,
// the task catalog, withdrawal and upgrade requests and the economy
// settings row.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage encapsulates the PostgreSQL connection and implements the
// repository methods used by the services.
type Storage struct {
	DB *sql.DB
}

// querier is the statement surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// q returns the transaction carried by WithUserLock's context, or the pool.
// Repository methods go through it so a locked callback's statements land in
// one transaction.
func (s *Storage) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.DB
}

// New opens a PostgreSQL connection and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// WithUserLock serializes fn against every other WithUserLock call for the
// same user and runs every statement fn issues in a single transaction on
// the locked connection. Point balances and daily counters are
// read-modify-write, so the ledger wraps each operation in this lock; the
// transaction rolls back as a whole when fn returns an error, so a failed
// step never leaves a partial write behind.
func (s *Storage) WithUserLock(ctx context.Context, userUID string, fn func(ctx context.Context) error) error {
	const op = "storage.WithUserLock"

	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtext($1))`, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, userUID)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CheckDatabaseReady verifies the schema has been migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
