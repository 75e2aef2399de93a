package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"casetracker/metrics"

	"go.uber.org/zap"
)

// Dialect selects SQL flavour differences between supported drivers.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Database holds the relational connections for entity storage.
// Writes go through WriteDB and reads through ReadDB. For SQLite these are
// separate pools so WAL readers never queue behind the single writer. For
// Postgres both fields point at the same pool.
type Database struct {
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Dialect Dialect
	Path    string
	Logger  *zap.SugaredLogger

	closed atomic.Bool

	// previous counter values, Prometheus counters only take deltas
	prevWriteWaitCount         int64
	prevWriteMaxIdleClosed     int64
	prevWriteMaxLifetimeClosed int64
	prevReadWaitCount          int64
	prevReadMaxIdleClosed      int64
	prevReadMaxLifetimeClosed  int64
}

// rebind rewrites ? placeholders into the driver's positional form.
func (d *Database) rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d *Database) checkOpen() error {
	if d.closed.Load() {
		return ErrDatabaseClosed
	}
	return nil
}

// WithTransaction executes fn within a write transaction, rolling back on error or panic.
func (d *Database) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	tx, err := d.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction (original error: %w, rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// createTables creates the entity tables if they do not exist yet.
func (d *Database) createTables(ctx context.Context) error {
	schema := sqliteSchema
	if d.Dialect == DialectPostgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := d.WriteDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	d.Logger.Infow("Database schema ensured", "dialect", d.Dialect)
	return nil
}

// Close closes the database connections. Further calls return ErrDatabaseClosed.
func (d *Database) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return ErrDatabaseClosed
	}

	var writeErr, readErr error
	if d.WriteDB != nil {
		writeErr = d.WriteDB.Close()
	}
	if d.ReadDB != nil && d.ReadDB != d.WriteDB {
		readErr = d.ReadDB.Close()
	}

	if writeErr != nil {
		return fmt.Errorf("failed to close write pool: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("failed to close read pool: %w", readErr)
	}

	return nil
}

// HealthCheck verifies the database connection is alive.
func (d *Database) HealthCheck(ctx context.Context) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	return d.WriteDB.PingContext(ctx)
}

// ConnectionPoolStats returns statistics about the read and write connection pools
type ConnectionPoolStats struct {
	WritePool PoolStats `json:"write_pool"`
	ReadPool  PoolStats `json:"read_pool"`
}

type PoolStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

func newPoolStats(s sql.DBStats) PoolStats {
	return PoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}
}

// GetConnectionPoolStats returns current connection pool statistics for monitoring
func (d *Database) GetConnectionPoolStats() ConnectionPoolStats {
	return ConnectionPoolStats{
		WritePool: newPoolStats(d.WriteDB.Stats()),
		ReadPool:  newPoolStats(d.ReadDB.Stats()),
	}
}

// StartMetricsCollection periodically publishes pool statistics to Prometheus until ctx is done.
func (d *Database) StartMetricsCollection(ctx context.Context, interval time.Duration) {
	d.updatePoolMetrics()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				d.Logger.Info("Database metrics collection stopped")
				return
			case <-ticker.C:
				if d.closed.Load() {
					return
				}
				d.updatePoolMetrics()
			}
		}
	}()

	d.Logger.Infow("Database metrics collection started", "interval", interval)
}

func (d *Database) updatePoolMetrics() {
	d.updatePoolMetricsForType("write", d.WriteDB.Stats(), &d.prevWriteWaitCount, &d.prevWriteMaxIdleClosed, &d.prevWriteMaxLifetimeClosed)
	if d.ReadDB != d.WriteDB {
		d.updatePoolMetricsForType("read", d.ReadDB.Stats(), &d.prevReadWaitCount, &d.prevReadMaxIdleClosed, &d.prevReadMaxLifetimeClosed)
	}
}

func (d *Database) updatePoolMetricsForType(poolType string, stats sql.DBStats, prevWaitCount, prevMaxIdleClosed, prevMaxLifetimeClosed *int64) {
	metrics.DBPoolOpenConnections.WithLabelValues(poolType).Set(float64(stats.OpenConnections))
	metrics.DBPoolInUse.WithLabelValues(poolType).Set(float64(stats.InUse))
	metrics.DBPoolIdle.WithLabelValues(poolType).Set(float64(stats.Idle))
	metrics.DBPoolMaxOpenConnections.WithLabelValues(poolType).Set(float64(stats.MaxOpenConnections))

	if delta := stats.WaitCount - *prevWaitCount; delta > 0 {
		metrics.DBPoolWaitCount.WithLabelValues(poolType).Add(float64(delta))
		*prevWaitCount = stats.WaitCount
	}
	if delta := stats.MaxIdleClosed - *prevMaxIdleClosed; delta > 0 {
		metrics.DBPoolMaxIdleClosed.WithLabelValues(poolType).Add(float64(delta))
		*prevMaxIdleClosed = stats.MaxIdleClosed
	}
	if delta := stats.MaxLifetimeClosed - *prevMaxLifetimeClosed; delta > 0 {
		metrics.DBPoolMaxLifetimeClosed.WithLabelValues(poolType).Add(float64(delta))
		*prevMaxLifetimeClosed = stats.MaxLifetimeClosed
	}
}
