package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// configureSQLiteConnection enables WAL on the write pool and verifies the
// per-connection pragmas carried in the DSN took effect
func configureSQLiteConnection(db *sql.DB, logger *zap.SugaredLogger, dbPath string, poolType string) error {
	if poolType == "write" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// SQLite disables foreign keys by default; ON DELETE SET NULL depends on them
	var fkEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to verify foreign keys: %w", err)
	}
	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys not enabled (got: %d, expected: 1)", fkEnabled)
	}

	// In-memory databases report "memory" instead of "wal"
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to query journal mode: %w", err)
	}
	if dbPath != ":memory:" && journalMode != "wal" {
		return fmt.Errorf("WAL mode not enabled (got: %s, expected: wal)", journalMode)
	}
	logger.Debugw("SQLite pool configured", "pool", poolType, "journal_mode", journalMode)

	return nil
}

// NewSQLite opens an embedded SQLite database with separate read and write pools
// and ensures the entity tables exist. ":memory:" opens a shared-cache in-memory database.
func NewSQLite(dbPath string, logger *zap.SugaredLogger) (*Database, error) {
	if err := validateDatabasePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	writeDB, err := sql.Open("sqlite", sqliteDSN(dbPath, false))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite write database: %w", err)
	}
	if err := configureSQLiteConnection(writeDB, logger, dbPath, "write"); err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to configure write connection: %w", err)
	}

	// Single writer for WAL mode
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(0)
	writeDB.SetConnMaxIdleTime(10 * time.Minute)

	readDB, err := sql.Open("sqlite", sqliteDSN(dbPath, true))
	if err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to open SQLite read database: %w", err)
	}
	if err := configureSQLiteConnection(readDB, logger, dbPath, "read"); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("failed to configure read connection: %w", err)
	}

	var queryOnly int
	if err := readDB.QueryRow("PRAGMA query_only").Scan(&queryOnly); err != nil || queryOnly != 1 {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("query_only mode not enabled on read pool (got: %d): %v", queryOnly, err)
	}

	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	readDB.SetConnMaxIdleTime(10 * time.Minute)

	db := &Database{
		WriteDB: writeDB,
		ReadDB:  readDB,
		Dialect: DialectSQLite,
		Path:    dbPath,
		Logger:  logger,
	}

	if err := db.createTables(context.Background()); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Infow("SQLite database initialized", "path", dbPath)
	return db, nil
}

// sqliteDSN builds a modernc.org/sqlite DSN whose pragmas apply to every pooled
// connection, not just the first one. Without shared cache every connection to
// ":memory:" sees its own empty database.
func sqliteDSN(dbPath string, readOnly bool) string {
	params := url.Values{}
	if dbPath == ":memory:" {
		params.Set("cache", "shared")
	}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	if readOnly {
		params.Add("_pragma", "query_only(1)")
	}
	return "file:" + dbPath + "?" + params.Encode()
}

// validateDatabasePath rejects paths that escape the working directory or name
// special files. Temp directories are allowed for tests.
func validateDatabasePath(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dbPath == ":memory:" {
		return nil
	}
	if len(dbPath) > 512 {
		return fmt.Errorf("database path exceeds maximum length of 512 characters")
	}
	if strings.Contains(dbPath, "\x00") {
		return fmt.Errorf("null bytes not allowed in path")
	}
	if strings.Contains(dbPath, "..") {
		return fmt.Errorf("path traversal not allowed (..): %s", dbPath)
	}

	base := strings.ToUpper(filepath.Base(dbPath))
	for _, r := range []string{"CON", "PRN", "AUX", "NUL", "COM1", "LPT1"} {
		if base == r || strings.HasPrefix(base, r+".") {
			return fmt.Errorf("reserved name not allowed: %s", filepath.Base(dbPath))
		}
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if isWithinDir(os.TempDir(), absPath) {
		return nil
	}
	if filepath.IsAbs(dbPath) {
		return fmt.Errorf("absolute paths not allowed: %s", dbPath)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if !isWithinDir(wd, absPath) {
		return fmt.Errorf("path escapes working directory: %s resolves to %s", dbPath, absPath)
	}

	return nil
}

// isWithinDir reports whether the absolute path lies inside dir. A sibling
// that shares dir as a string prefix does not count.
func isWithinDir(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
