// Package store persists commit and reference records into an embedded SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/masmgr/gitsqlite/internal/record"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrConflict is wrapped by insert errors caused by a primary key collision.
var ErrConflict = errors.New("row already exists")

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Store is an open destination database. It is owned by a single run.
type Store struct {
	db      *sqlx.DB
	path    string
	existed bool
}

// Open opens (creating if needed) the SQLite database at path.
// Whether the file existed before this call is recorded for EnsureSchema.
func Open(path string) (*Store, error) {
	existed := false
	if _, err := os.Stat(path); err == nil {
		existed = true
	}

	db, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// One connection: transactions run strictly one after another.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	return &Store{db: db, path: path, existed: existed}, nil
}

// Path returns the location the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Existed reports whether the destination was present before Open.
func (s *Store) Existed() bool {
	return s.existed
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables unless the destination already existed.
// It reports whether the schema was created.
func (s *Store) EnsureSchema(ctx context.Context) (bool, error) {
	if s.existed {
		slog.Debug("destination exists, skipping schema creation", slog.String("path", s.path))
		return false, nil
	}
	if err := s.CreateSchema(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// CreateSchema creates the three tables in one transaction.
func (s *Store) CreateSchema(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Inserter performs row insertions inside one transaction.
type Inserter interface {
	InsertCommit(c record.CommitRecord) error
	InsertRelation(r record.CommitRelation) error
	InsertRef(r record.RefRecord) error
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back on every other exit path, including panics.
func (s *Store) WithTx(ctx context.Context, fn func(Inserter) error) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Debug("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err = fn(&Tx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("transaction committed", slog.Duration("duration", time.Since(start)))
	return nil
}

// Tx is an open transaction handed to WithTx callbacks.
type Tx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

// InsertCommit inserts one commit_details row.
func (t *Tx) InsertCommit(c record.CommitRecord) error {
	_, err := t.tx.NamedExecContext(t.ctx, insertCommitSQL, c)
	return insertError("commit_details", c.ID, err)
}

// InsertRelation inserts one commit_relation row.
func (t *Tx) InsertRelation(r record.CommitRelation) error {
	_, err := t.tx.NamedExecContext(t.ctx, insertRelationSQL, r)
	return insertError("commit_relation", r.Parent+"->"+r.Child, err)
}

// InsertRef inserts one ref_details row.
func (t *Tx) InsertRef(r record.RefRecord) error {
	_, err := t.tx.NamedExecContext(t.ctx, insertRefSQL, r)
	return insertError("ref_details", r.Name, err)
}

// Compile-time interface conformance check.
var _ Inserter = (*Tx)(nil)

func insertError(table, key string, err error) error {
	if err == nil {
		return nil
	}
	if isConflict(err) {
		return fmt.Errorf("insert into %s (%s): %w: %w", table, key, ErrConflict, err)
	}
	return fmt.Errorf("insert into %s (%s): %w", table, key, err)
}

func isConflict(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Connections without extended result codes report the primary code only.
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
