// Package storage implements the embedded job-queue persistence backing
// the segmenter-to-ASR worker handoff (spec §10.5/§11.6): a single
// transcription_jobs table, scoped down from the teacher's multi-entity
// article/source/tag schema (zbor/internal/storage/db.go) to just this
// module's domain.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/naozine/voxengine/internal/storage/sqlc"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB holds the database connection and its generated-style query wrapper.
type DB struct {
	*sql.DB
	Queries *sqlc.Queries
}

// Open connects to the SQLite database at path, creating its parent
// directory and initializing the schema if needed, matching the teacher's
// pragma set (WAL, foreign keys on, a 5s busy timeout).
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: set pragma %q: %w", pragma, err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: initialize schema: %w", err)
	}

	return &DB{DB: db, Queries: sqlc.New(db)}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
