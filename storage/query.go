package storage

import (
	"context"
	"database/sql"
	"strings"

	"casetracker/core"

	"go.uber.org/zap"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// buildOrderBy turns sort orders into an ORDER BY clause using only the
// whitelisted columns. Unknown properties are skipped. idColumn is appended as
// a final ascending tiebreak unless already present.
func buildOrderBy(orders []core.SortOrder, columns map[string]string, idColumn string) string {
	clauses := make([]string, 0, len(orders)+1)
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		col, ok := columns[o.Property]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		dir := "ASC"
		if o.Direction == core.SortDesc {
			dir = "DESC"
		}
		clauses = append(clauses, col+" "+dir)
	}
	if !seen[idColumn] {
		clauses = append(clauses, idColumn+" ASC")
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// logDeleteResult records how many rows an unconditional delete removed. The
// delete itself already succeeded, so a driver that cannot report the count
// only produces a warning.
func logDeleteResult(logger *zap.SugaredLogger, entity string, id int64, result sql.Result) {
	rows, err := result.RowsAffected()
	if err != nil {
		logger.Warnw("Could not read rows affected after delete", "entity", entity, "id", id, "error", err)
		return
	}
	logger.Debugw("Delete executed", "entity", entity, "id", id, "rows_affected", rows)
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullBoolPtr(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	v := nb.Bool
	return &v
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
