package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Kadajett/musicManager/internal/domain"
)

// Manager persists location bookkeeping and transfer history
type Manager struct {
	db        *sql.DB
	maxRecent int
}

// TransferRecord represents a single completed or failed transfer
type TransferRecord struct {
	ID               int64
	SourcePath       string
	TargetPath       string
	StartTime        time.Time
	EndTime          time.Time
	Status           string // "success" or "failed"
	FilesTransferred int
	BytesTransferred int64
	Error            string
}

// settings key for the persisted default location
const keyDefaultLocation = "default_location"

// NewManager creates a new state manager backed by a sqlite database
// under dataDir. maxRecent bounds the recent-locations list.
func NewManager(dataDir string, maxRecent int) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if maxRecent <= 0 {
		return nil, fmt.Errorf("max recent locations must be positive, got %d", maxRecent)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "musicman.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db, maxRecent: maxRecent}

	// Initialize schema
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

// initSchema creates the database schema
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recent_locations (
		path TEXT PRIMARY KEY,
		last_used TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorite_locations (
		path TEXT PRIMARY KEY,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		target_path TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		files_transferred INTEGER DEFAULT 0,
		bytes_transferred INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recent_last_used ON recent_locations(last_used DESC);
	CREATE INDEX IF NOT EXISTS idx_transfers_time ON transfers(start_time DESC);
	`

	_, err := m.db.Exec(schema)
	return err
}

// DefaultLocation returns the persisted default location
// Returns domain.ErrNotFound when none has been set
func (m *Manager) DefaultLocation(ctx context.Context) (string, error) {
	var path string
	err := m.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, keyDefaultLocation).Scan(&path)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query default location: %w", err)
	}
	return path, nil
}

// SetDefaultLocation persists path as the default location
func (m *Manager) SetDefaultLocation(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("default location cannot be empty")
	}

	_, err := m.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		keyDefaultLocation, path)
	if err != nil {
		return fmt.Errorf("failed to set default location: %w", err)
	}
	return nil
}

// ClearDefaultLocation removes the persisted default location
func (m *Manager) ClearDefaultLocation(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key = ?`, keyDefaultLocation)
	if err != nil {
		return fmt.Errorf("failed to clear default location: %w", err)
	}
	return nil
}

// AddRecentLocation records path at the front of the recents list.
// An already-present path moves to the front instead of duplicating;
// the list is truncated to the configured maximum.
func (m *Manager) AddRecentLocation(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("location path cannot be empty")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recent_locations (path, last_used) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET last_used = excluded.last_used`,
		path, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record recent location: %w", err)
	}

	// Truncate everything past the most recent maxRecent entries
	_, err = tx.ExecContext(ctx,
		`DELETE FROM recent_locations WHERE path NOT IN (
			SELECT path FROM recent_locations ORDER BY last_used DESC LIMIT ?
		)`, m.maxRecent)
	if err != nil {
		return fmt.Errorf("failed to truncate recent locations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recent location: %w", err)
	}
	return nil
}

// RecentLocations returns the recents list, most recent first
func (m *Manager) RecentLocations(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT path FROM recent_locations ORDER BY last_used DESC LIMIT ?`, m.maxRecent)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent locations: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan recent location: %w", err)
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent locations: %w", err)
	}
	return paths, nil
}

// AddFavoriteLocation marks path as a favorite; adding twice is a no-op
func (m *Manager) AddFavoriteLocation(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("location path cannot be empty")
	}

	_, err := m.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorite_locations (path) VALUES (?)`, path)
	if err != nil {
		return fmt.Errorf("failed to add favorite location: %w", err)
	}
	return nil
}

// RemoveFavoriteLocation unmarks path; missing paths are a no-op
func (m *Manager) RemoveFavoriteLocation(ctx context.Context, path string) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM favorite_locations WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to remove favorite location: %w", err)
	}
	return nil
}

// FavoriteLocations returns all favorites, oldest first
func (m *Manager) FavoriteLocations(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT path FROM favorite_locations ORDER BY added_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite locations: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan favorite location: %w", err)
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite locations: %w", err)
	}
	return paths, nil
}

// SaveTransfer records a finished transfer
func (m *Manager) SaveTransfer(ctx context.Context, record TransferRecord) error {
	// Validate status
	if record.Status != "success" && record.Status != "failed" {
		return fmt.Errorf("invalid status: %s (must be 'success' or 'failed')", record.Status)
	}

	query := `
		INSERT INTO transfers (source_path, target_path, start_time, end_time, status, files_transferred, bytes_transferred, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.ExecContext(ctx, query,
		record.SourcePath,
		record.TargetPath,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.FilesTransferred,
		record.BytesTransferred,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save transfer record: %w", err)
	}

	return nil
}

// TransferHistory retrieves the most recent transfers
func (m *Manager) TransferHistory(ctx context.Context, limit int) ([]TransferRecord, error) {
	// Validate limit
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT id, source_path, target_path, start_time, end_time, status, files_transferred, bytes_transferred, error
		FROM transfers
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := m.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer history: %w", err)
	}
	defer rows.Close()

	var records []TransferRecord
	for rows.Next() {
		var record TransferRecord
		err := rows.Scan(
			&record.ID,
			&record.SourcePath,
			&record.TargetPath,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.FilesTransferred,
			&record.BytesTransferred,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
