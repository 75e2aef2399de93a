package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database connection pool metrics.
//
// Every metric carries a "pool" label: "write" or "read". Postgres shares one
// pool for both and only reports "write".

var (
	DBPoolOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "open_connections",
			Help:      "Number of established connections, in use and idle",
		},
		[]string{"pool"},
	)

	DBPoolInUse = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "in_use",
			Help:      "Number of connections currently in use",
		},
		[]string{"pool"},
	)

	DBPoolIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "idle",
			Help:      "Number of idle connections",
		},
		[]string{"pool"},
	)

	DBPoolMaxOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "max_open_connections",
			Help:      "Configured maximum number of open connections",
		},
		[]string{"pool"},
	)

	// DBPoolWaitCount is fed with deltas of sql.DBStats.WaitCount.
	DBPoolWaitCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "wait_count_total",
			Help:      "Total number of connections waited for",
		},
		[]string{"pool"},
	)

	DBPoolMaxIdleClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "max_idle_closed_total",
			Help:      "Total number of connections closed due to SetMaxIdleConns",
		},
		[]string{"pool"},
	)

	DBPoolMaxLifetimeClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casetracker",
			Subsystem: "db_pool",
			Name:      "max_lifetime_closed_total",
			Help:      "Total number of connections closed due to SetConnMaxLifetime",
		},
		[]string{"pool"},
	)
)
