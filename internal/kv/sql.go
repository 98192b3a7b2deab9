package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect holds the SQL that differs between the supported databases.
type Dialect struct {
	Name   string
	Create string
	Get    string
	Upsert string
	Delete string
}

var (
	MySQL = Dialect{
		Name: "mysql",
		Create: "CREATE TABLE IF NOT EXISTS kv_entries (" +
			"scope VARCHAR(64) NOT NULL, k VARCHAR(64) NOT NULL, v MEDIUMTEXT NOT NULL, " +
			"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP, " +
			"PRIMARY KEY (scope, k))",
		Get:    "SELECT v FROM kv_entries WHERE scope=? AND k=? LIMIT 1",
		Upsert: "INSERT INTO kv_entries (scope, k, v) VALUES (?,?,?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
		Delete: "DELETE FROM kv_entries WHERE scope=? AND k=?",
	}
	Postgres = Dialect{
		Name: "postgres",
		Create: "CREATE TABLE IF NOT EXISTS kv_entries (" +
			"scope VARCHAR(64) NOT NULL, k VARCHAR(64) NOT NULL, v TEXT NOT NULL, " +
			"updated_at TIMESTAMPTZ NOT NULL DEFAULT now(), " +
			"PRIMARY KEY (scope, k))",
		Get:    "SELECT v FROM kv_entries WHERE scope=$1 AND k=$2 LIMIT 1",
		Upsert: "INSERT INTO kv_entries (scope, k, v) VALUES ($1,$2,$3) ON CONFLICT (scope, k) DO UPDATE SET v=EXCLUDED.v, updated_at=now()",
		Delete: "DELETE FROM kv_entries WHERE scope=$1 AND k=$2",
	}
	SQLite = Dialect{
		Name: "sqlite3",
		Create: "CREATE TABLE IF NOT EXISTS kv_entries (" +
			"scope TEXT NOT NULL, k TEXT NOT NULL, v TEXT NOT NULL, " +
			"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
			"PRIMARY KEY (scope, k))",
		Get:    "SELECT v FROM kv_entries WHERE scope=? AND k=? LIMIT 1",
		Upsert: "INSERT INTO kv_entries (scope, k, v) VALUES (?,?,?) ON CONFLICT (scope, k) DO UPDATE SET v=excluded.v, updated_at=CURRENT_TIMESTAMP",
		Delete: "DELETE FROM kv_entries WHERE scope=? AND k=?",
	}
)

// DialectFor returns the dialect for a store driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("kv: unsupported sql driver %q", driver)
}

// SQLStore keeps entries in a single kv_entries table.
type SQLStore struct {
	db *sql.DB
	d  Dialect
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, d: d}
}

// Migrate creates the kv_entries table when it does not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.Create); err != nil {
		return fmt.Errorf("kv: create table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, scope, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.d.Get, scope, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv: get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLStore) Set(ctx context.Context, scope, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.d.Upsert, scope, key, value); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the keys inside one transaction.
func (s *SQLStore) Delete(ctx context.Context, scope string, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, s.d.Delete, scope, k); err != nil {
			return fmt.Errorf("kv: delete %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kv: commit: %w", err)
	}
	return nil
}
