package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"casetracker/config"
	"casetracker/storage"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// dbCheckResult is the outcome of 'db check'
type dbCheckResult struct {
	Driver          string        `json:"driver"`
	Target          string        `json:"target"`
	Healthy         bool          `json:"healthy"`
	Latency         time.Duration `json:"latency_ns"`
	CaseDefinitions int64         `json:"case_definitions"`
	Examines        int64         `json:"examines"`
	Error           string        `json:"error,omitempty"`

	Pools *storage.ConnectionPoolStats `json:"pools,omitempty"`
}

// newDBCmd creates the 'db' command group
func newDBCmd(opts *globalOptions) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}
	dbCmd.AddCommand(newDBCheckCmd(opts))
	return dbCmd
}

// newDBCheckCmd creates the 'db check' subcommand
func newDBCheckCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify database connectivity and report row counts",
		Long: `Open the configured database, ensure the schema, ping it and print the
number of stored case definitions and examines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			cfg, err := config.LoadConfig(opts.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var s *spinner.Spinner
			if !asJSON && !opts.quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
				s.Suffix = fmt.Sprintf(" Connecting to %s database...", cfg.Database.Driver)
				s.Start()
			}

			result := runDBCheck(ctx, cfg, zap.NewNop().Sugar())

			if s != nil {
				s.Stop()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := outputAsJSON(out, result); err != nil {
					return err
				}
			} else {
				renderDBCheck(out, result)
			}

			if !result.Healthy {
				return fmt.Errorf("database check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	return cmd
}

// openDatabase opens the configured store without starting the server.
func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*storage.Database, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		return storage.NewPostgres(ctx, cfg.Database.DSN, storage.PostgresOptions{
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
	}
	return storage.NewSQLite(cfg.GetSQLitePath(), logger)
}

// runDBCheck collects connectivity and row counts. Failures are reported in
// the result rather than returned.
func runDBCheck(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) *dbCheckResult {
	result := &dbCheckResult{Driver: cfg.Database.Driver, Target: cfg.GetSQLitePath()}
	if cfg.Database.Driver == config.DriverPostgres {
		result.Target = cfg.Redacted().Database.DSN
	}

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer db.Close()

	start := time.Now()
	if err := db.HealthCheck(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Latency = time.Since(start)

	if result.CaseDefinitions, err = storage.NewCaseDefinitionStore(db, logger).Count(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	if result.Examines, err = storage.NewExamineStore(db, logger).Count(ctx); err != nil {
		result.Error = err.Error()
		return result
	}

	pools := db.GetConnectionPoolStats()
	result.Pools = &pools
	result.Healthy = true
	return result
}

// renderDBCheck prints a human-readable check report
func renderDBCheck(w io.Writer, r *dbCheckResult) {
	headerColor.Fprintln(w, "DATABASE CHECK")
	printSection(w, "Connection")
	printField(w, "Driver", r.Driver)
	printField(w, "Target", r.Target)

	if !r.Healthy {
		printField(w, "Status", errorColor.Sprint("unreachable"))
		errorColor.Fprintf(w, "\n  %s\n", r.Error)
		return
	}

	printField(w, "Status", successColor.Sprint("ok"))
	printField(w, "Ping", r.Latency.Round(time.Microsecond).String())
	fmt.Fprintln(w)

	printSection(w, "Rows")
	printField(w, "Case definitions", fmt.Sprintf("%d", r.CaseDefinitions))
	printField(w, "Examines", fmt.Sprintf("%d", r.Examines))
	if r.CaseDefinitions == 0 && r.Examines == 0 {
		warningColor.Fprintln(w, "\n  Database is empty")
	}

	if r.Pools != nil {
		fmt.Fprintln(w)
		printSection(w, "Connection pools")
		printField(w, "Write", formatPool(r.Pools.WritePool))
		printField(w, "Read", formatPool(r.Pools.ReadPool))
	}
}

func formatPool(p storage.PoolStats) string {
	return fmt.Sprintf("%d open / %d max, %d in use, %d idle", p.OpenConnections, p.MaxOpenConnections, p.InUse, p.Idle)
}
