package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"casetracker/config"

	"go.uber.org/zap"
)

// EnsureDataDirectories creates the data directory and the SQLite parent
// directory and verifies both are writable. It is a no-op for Postgres and
// in-memory SQLite.
func EnsureDataDirectories(cfg *config.Config, sugar *zap.SugaredLogger) error {
	if cfg.Database.Driver != config.DriverSQLite || cfg.GetSQLitePath() == ":memory:" {
		return nil
	}

	dirs := []string{cfg.GetDataDir()}
	if parent := filepath.Dir(cfg.GetSQLitePath()); parent != cfg.GetDataDir() {
		dirs = append(dirs, parent)
	}

	for _, dir := range dirs {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path for %s: %w", dir, err)
		}

		if err := os.MkdirAll(absPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w\n"+
				"  Remediation: Ensure the parent directory exists and is writable\n"+
				"  For Docker: Check volume mount permissions\n"+
				"  For bare metal: Run 'mkdir -p %s && chmod 755 %s'", dir, err, absPath, absPath)
		}

		// Verify write permissions
		testFile := filepath.Join(absPath, ".casetracker_write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			return fmt.Errorf("directory %s is not writable: %w\n"+
				"  Remediation: Check file system permissions\n"+
				"  For Docker: Ensure volume is mounted with write access\n"+
				"  For bare metal: Run 'chmod -R u+w %s'", dir, err, absPath)
		}
		_ = os.Remove(testFile)

		sugar.Infow("Data directory ready", "path", absPath)
	}

	return nil
}

// ClassifyConnectionError turns a network failure against a server dependency
// (Postgres or Redis) into an operator-facing message.
func ClassifyConnectionError(err error, service, addr string) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Connection to %s at %s timed out.\n"+
			"  Possible causes:\n"+
			"  - %s is starting up (wait and retry)\n"+
			"  - Network latency or firewall blocking the connection\n"+
			"  Remediation:\n"+
			"  - Verify network connectivity: nc -zv %s", service, addr, service, addr)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			(opErr.Err != nil && (containsIgnoreCase(opErr.Err.Error(), "connection refused") ||
				containsIgnoreCase(opErr.Err.Error(), "actively refused"))) {
			return fmt.Sprintf("Connection refused by %s at %s.\n"+
				"  This usually means %s is not running.\n"+
				"  Remediation:\n"+
				"  - Start it: docker compose up -d\n"+
				"  - Verify the address is correct in config.yaml", service, addr, service)
		}
	}

	if containsIgnoreCase(errStr, "no such host") || containsIgnoreCase(errStr, "lookup") {
		return fmt.Sprintf("Cannot resolve hostname in %s address %s.\n"+
			"  Remediation:\n"+
			"  - Verify the hostname is correct\n"+
			"  - Check DNS configuration", service, addr)
	}

	if containsIgnoreCase(errStr, "authentication") || containsIgnoreCase(errStr, "password") || containsIgnoreCase(errStr, "denied") {
		return fmt.Sprintf("Authentication failed for %s at %s.\n"+
			"  Remediation:\n"+
			"  - Verify the credentials in config.yaml or CASETRACKER_DATABASE_DSN", service, addr)
	}

	return fmt.Sprintf("Failed to connect to %s at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure %s is running and accessible\n"+
		"  - Verify network connectivity", service, addr, err, service)
}

// ClassifySQLiteError provides specific error messages based on the type of SQLite failure.
func ClassifySQLiteError(err error, dbPath string) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()
	absPath, _ := filepath.Abs(dbPath)
	parentDir := filepath.Dir(absPath)

	switch {
	case containsIgnoreCase(errStr, "permission denied") || containsIgnoreCase(errStr, "access denied"):
		return fmt.Sprintf("Permission denied accessing SQLite database at %s.\n"+
			"  Remediation:\n"+
			"  - Check file permissions: ls -la %s\n"+
			"  - Check directory permissions: ls -la %s\n"+
			"  - For Docker: Ensure volume is mounted with proper user permissions",
			absPath, absPath, parentDir)

	case containsIgnoreCase(errStr, "database is locked") || containsIgnoreCase(errStr, "SQLITE_BUSY"):
		return fmt.Sprintf("SQLite database at %s is locked by another process.\n"+
			"  Remediation:\n"+
			"  - Check for running casetracker processes: ps aux | grep casetracker\n"+
			"  - Check for lock files: ls -la %s*", absPath, absPath)

	case containsIgnoreCase(errStr, "disk full") || containsIgnoreCase(errStr, "no space") || containsIgnoreCase(errStr, "SQLITE_FULL"):
		return fmt.Sprintf("Disk full - cannot write to SQLite database at %s.\n"+
			"  Remediation:\n"+
			"  - Check available disk space: df -h %s", absPath, parentDir)

	case containsIgnoreCase(errStr, "corrupt") || containsIgnoreCase(errStr, "malformed") || containsIgnoreCase(errStr, "SQLITE_CORRUPT"):
		return fmt.Sprintf("SQLite database at %s appears to be corrupted.\n"+
			"  CRITICAL: Backup any existing data before proceeding!\n"+
			"  Remediation:\n"+
			"  - Check integrity: sqlite3 %s \"PRAGMA integrity_check;\"\n"+
			"  - Restore from backup if recovery fails", absPath, absPath)

	case containsIgnoreCase(errStr, "invalid database path"):
		return fmt.Sprintf("SQLite path %s is not allowed.\n"+
			"  Remediation:\n"+
			"  - Use a path relative to the working directory via CASETRACKER_SQLITE_PATH\n"+
			"  - Do not use '..' segments", dbPath)

	case containsIgnoreCase(errStr, "read-only"):
		return fmt.Sprintf("SQLite database location is on a read-only file system: %s.\n"+
			"  Remediation:\n"+
			"  - Move database to a writable location via CASETRACKER_SQLITE_PATH", absPath)
	}

	return fmt.Sprintf("Failed to initialize SQLite database at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure the directory %s exists and is writable\n"+
		"  - Check disk space and permissions", absPath, err, parentDir)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// printFatal writes a boxed failure report to stderr.
func printFatal(title, body string) {
	fmt.Fprintf(os.Stderr, "\n========================================\n")
	fmt.Fprintf(os.Stderr, "FATAL: %s\n", title)
	fmt.Fprintf(os.Stderr, "========================================\n")
	fmt.Fprintf(os.Stderr, "%s\n", body)
	fmt.Fprintf(os.Stderr, "========================================\n\n")
}
