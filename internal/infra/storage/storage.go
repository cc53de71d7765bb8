// Package storage implements the key/blob persistence contract (spec §4.1)
// on top of SQLite: three logical tables (`model`, `zones`, `capacity`)
// collapsed into one physical `kv_blobs` table keyed by (table, key), each
// value a JSON-serialised record. Whole-table reads and writes: a Save
// replaces the prior image for that table name.
//
// Architecture ref: adaptive focus-duration recommender §4.1.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/tutu-network/focusband/internal/domain"
	"github.com/tutu-network/focusband/internal/infra/metrics"
)

// Table names constitute part of the on-disk compatibility contract.
const (
	TableModel    = "model"
	TableZones    = "zones"
	TableCapacity = "capacity"
)

// DB wraps a SQLite connection providing the whole-table blob contract.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and applies
// migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1) // modernc.org/sqlite: single-writer discipline

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS kv_blobs (
			table_name TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (table_name, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_blobs_table ON kv_blobs(table_name)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("storage: migration failed: %w", err)
		}
	}
	return nil
}

// loadTable reads every row for tableName and unmarshals each value into T.
// A read failure (missing table, parse error) degrades to an empty map
// rather than propagating, per the "availability over durability" stance.
func loadTable[T any](ctx context.Context, db *DB, tableName string) (map[string]T, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key, value FROM kv_blobs WHERE table_name = ?`, tableName)
	if err != nil {
		log.Printf("[storage] load %s failed, returning empty: %v", tableName, err)
		metrics.PersistenceFailures.WithLabelValues(tableName, "load").Inc()
		return map[string]T{}, nil
	}
	defer rows.Close()

	out := map[string]T{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			log.Printf("[storage] load %s: scan failed for a row, skipping: %v", tableName, err)
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			log.Printf("[storage] load %s: corrupt value for key %q, skipping: %v", tableName, key, err)
			continue
		}
		out[key] = v
	}
	if err := rows.Err(); err != nil {
		log.Printf("[storage] load %s: row iteration error, returning partial result: %v", tableName, err)
	}
	return out, nil
}

// saveTable replaces the prior image for tableName with data, in a single
// transaction (whole-table write semantics per spec §4.1).
func saveTable[T any](ctx context.Context, db *DB, tableName string, data map[string]T) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: save %s: begin tx: %w", tableName, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_blobs WHERE table_name = ?`, tableName); err != nil {
		return fmt.Errorf("storage: save %s: clear prior image: %w", tableName, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO kv_blobs (table_name, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: save %s: prepare: %w", tableName, err)
	}
	defer stmt.Close()

	for key, v := range data {
		blob, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("storage: save %s: marshal key %q: %w", tableName, key, err)
		}
		if _, err := stmt.ExecContext(ctx, tableName, key, string(blob)); err != nil {
			return fmt.Errorf("storage: save %s: insert key %q: %w", tableName, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: save %s: commit: %w", tableName, err)
	}
	return nil
}

// ─── recommender.Store implementation ───────────────────────────────────────

// LoadModel implements recommender.Store.
func (db *DB) LoadModel(ctx context.Context) (domain.ModelState, error) {
	return loadTable[domain.ContextPosteriors](ctx, db, TableModel)
}

// SaveModel implements recommender.Store.
func (db *DB) SaveModel(ctx context.Context, m domain.ModelState) error {
	return saveTable(ctx, db, TableModel, m)
}

// LoadZones implements recommender.Store.
func (db *DB) LoadZones(ctx context.Context) (domain.ZoneState, error) {
	return loadTable[*domain.ZoneData](ctx, db, TableZones)
}

// SaveZones implements recommender.Store.
func (db *DB) SaveZones(ctx context.Context, z domain.ZoneState) error {
	return saveTable(ctx, db, TableZones, z)
}

// LoadCapacity implements recommender.Store.
func (db *DB) LoadCapacity(ctx context.Context) (domain.CapacityState, error) {
	return loadTable[*domain.CapacityStats](ctx, db, TableCapacity)
}

// SaveCapacity implements recommender.Store.
func (db *DB) SaveCapacity(ctx context.Context, c domain.CapacityState) error {
	return saveTable(ctx, db, TableCapacity, c)
}

// ClearAll wipes all three tables atomically (spec §3 lifecycles:
// the user-invoked clear-all-data operation).
func (db *DB) ClearAll(ctx context.Context) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: clear all: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_blobs WHERE table_name IN (?, ?, ?)`, TableModel, TableZones, TableCapacity); err != nil {
		return fmt.Errorf("storage: clear all: %w", err)
	}
	return tx.Commit()
}
