// Package store implements the SQLite-backed botanical knowledge base.
// It exposes the four search capabilities the retrieval agents consume:
// filtered search, semantic search, keyword search, and the structural
// filter over location records. Failure is always reported distinctly
// from "zero results": an error means the store could not answer, an
// empty slice means it answered with nothing.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sanjeevani/internal/embedding"
	"sanjeevani/internal/logging"
)

// ConnState describes the health of the store handle.
type ConnState int

const (
	// StateConnected means the database is open and embeddings work.
	StateConnected ConnState = iota
	// StateDegraded means the database is open but the embedding
	// engine is unavailable; semantic search will fail until a
	// reconnect succeeds.
	StateDegraded
	// StateClosed means the handle has been closed.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDegraded:
		return "degraded"
	default:
		return "closed"
	}
}

// Store is the knowledge base handle. It is passed by reference into
// each retrieval agent constructor; there is no package-level
// singleton. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	db       *sql.DB
	dbPath   string
	embedder embedding.Engine
	state    ConnState
}

// Open initializes the SQLite database at the given path and attaches
// the embedding engine used for semantic search.
func Open(path string, embedder embedding.Engine) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path, embedder: embedder, state: StateConnected}
	if embedder == nil {
		s.state = StateDegraded
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Knowledge base opened at %s (state=%s)", path, s.state)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		plant_id TEXT NOT NULL DEFAULT '',
		botanical_name TEXT NOT NULL DEFAULT '',
		common_names TEXT NOT NULL DEFAULT '[]',
		family TEXT NOT NULL DEFAULT '',
		traditional_uses TEXT NOT NULL DEFAULT '[]',
		major_constituents TEXT NOT NULL DEFAULT '[]',
		pharmacology TEXT NOT NULL DEFAULT '',
		safety_info TEXT NOT NULL DEFAULT '',
		conservation_status TEXT NOT NULL DEFAULT '',
		threat_info TEXT NOT NULL DEFAULT '',
		text_content TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_plants_collection ON plants(collection);
	CREATE INDEX IF NOT EXISTS idx_plants_botanical ON plants(botanical_name);

	CREATE TABLE IF NOT EXISTS vectors (
		plant_row INTEGER PRIMARY KEY,
		collection TEXT NOT NULL,
		embedding TEXT NOT NULL,
		FOREIGN KEY(plant_row) REFERENCES plants(id)
	);
	CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vectors(collection);

	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		district TEXT NOT NULL,
		latitude REAL NOT NULL DEFAULT 0,
		longitude REAL NOT NULL DEFAULT 0,
		plants TEXT NOT NULL DEFAULT '[]',
		soils TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_locations_district ON locations(district);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// State reports the current connection state.
func (s *Store) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reconnect re-opens the database handle after a failure. Agents call
// this once before degrading to the next cascade tier.
func (s *Store) Reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Ping(); err == nil && s.state != StateClosed {
			return nil // still healthy
		}
		s.db.Close()
	}

	db, err := sql.Open(driverName, s.dbPath)
	if err != nil {
		s.state = StateClosed
		return fmt.Errorf("reconnect failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		s.state = StateClosed
		return fmt.Errorf("reconnect ping failed: %w", err)
	}

	s.db = db
	if s.embedder == nil {
		s.state = StateDegraded
	} else {
		s.state = StateConnected
	}
	logging.Store("Knowledge base reconnected (state=%s)", s.state)
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateClosed
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// handle returns the live database handle or an error when closed.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateClosed || s.db == nil {
		return nil, fmt.Errorf("knowledge base is closed")
	}
	return s.db, nil
}
