package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
)

// Dialect selects SQL syntax for the records table
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

type dialectSQL struct {
	create string
	load   string
	upsert string
}

var statements = map[Dialect]dialectSQL{
	Postgres: {
		create: `CREATE TABLE IF NOT EXISTS records (
			kind TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		load: `SELECT payload FROM records WHERE kind = $1`,
		upsert: `INSERT INTO records (kind, payload, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (kind) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
	},
	MySQL: {
		create: `CREATE TABLE IF NOT EXISTS records (
			kind VARCHAR(64) PRIMARY KEY,
			payload JSON NOT NULL,
			updated_at DATETIME(6) NOT NULL
		)`,
		load: `SELECT payload FROM records WHERE kind = ?`,
		upsert: `INSERT INTO records (kind, payload, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`,
	},
}

// SQLStore keeps one JSON document per collection in a records table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	sql     dialectSQL
}

// NewSQLStore wraps an open database using the given dialect
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	stmts, ok := statements[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &SQLStore{db: db, dialect: dialect, sql: stmts}, nil
}

// Migrate creates the records table if needed
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.sql.create); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Load implements Store
func (s *SQLStore) Load(ctx context.Context, kind Kind, dst interface{}) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, s.sql.load, string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return nil
}

// Save implements Store; the collection is replaced inside a transaction
func (s *SQLStore) Save(ctx context.Context, kind Kind, records interface{}) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.sql.upsert, string(kind), string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", kind, err)
	}

	log.WithFields(log.Fields{
		"kind":    kind,
		"bytes":   len(payload),
		"dialect": s.dialect,
	}).Debug("saved collection")
	return nil
}
