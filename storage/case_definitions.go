package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"casetracker/core"

	"go.uber.org/zap"
)

const caseDefinitionColumns = "id, name, description, active"

// caseDefinitionSortColumns maps API sort properties to columns
var caseDefinitionSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"active":      "active",
}

// CaseDefinitionStore persists case definitions
type CaseDefinitionStore struct {
	db     *Database
	logger *zap.SugaredLogger
}

// NewCaseDefinitionStore creates a case definition store over db
func NewCaseDefinitionStore(db *Database, logger *zap.SugaredLogger) *CaseDefinitionStore {
	return &CaseDefinitionStore{
		db:     db,
		logger: logger,
	}
}

// Save inserts the entity when it has no identity and overwrites every column
// otherwise. The stored record is returned with its identity set.
func (s *CaseDefinitionStore) Save(ctx context.Context, c *core.CaseDefinition) (*core.CaseDefinition, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	if !c.HasIdentity() {
		query := s.db.rebind("INSERT INTO case_definitions (name, description, active) VALUES (?, ?, ?) RETURNING id")
		var id int64
		err := s.db.WriteDB.QueryRowContext(ctx, query, c.Name, c.Description, c.Active).Scan(&id)
		if err != nil {
			return nil, s.wrapWriteError("insert", err)
		}
		s.logger.Debugw("Case definition inserted", "id", id)
		return s.findByID(ctx, s.db.WriteDB, id)
	}

	if err := s.update(ctx, s.db.WriteDB, c); err != nil {
		return nil, err
	}
	return s.findByID(ctx, s.db.WriteDB, *c.ID)
}

// Update loads the case definition, applies mutate and writes every column
// back within one transaction. Concurrent writers cannot interleave between
// the read and the write.
func (s *CaseDefinitionStore) Update(ctx context.Context, id int64, mutate func(*core.CaseDefinition)) (*core.CaseDefinition, error) {
	var saved *core.CaseDefinition
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.findByID(ctx, tx, id)
		if err != nil {
			return err
		}

		mutate(existing)
		existing.ID = &id

		if err := s.update(ctx, tx, existing); err != nil {
			return err
		}
		saved, err = s.findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *CaseDefinitionStore) update(ctx context.Context, q querier, c *core.CaseDefinition) error {
	query := s.db.rebind("UPDATE case_definitions SET name = ?, description = ?, active = ? WHERE id = ?")
	result, err := q.ExecContext(ctx, query, c.Name, c.Description, c.Active, *c.ID)
	if err != nil {
		return s.wrapWriteError("update", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %w: id %d", ErrCaseDefinitionNotFound, ErrNotFound, *c.ID)
	}
	return nil
}

// FindByID returns the case definition with the given identity
func (s *CaseDefinitionStore) FindByID(ctx context.Context, id int64) (*core.CaseDefinition, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	return s.findByID(ctx, s.db.ReadDB, id)
}

func (s *CaseDefinitionStore) findByID(ctx context.Context, q querier, id int64) (*core.CaseDefinition, error) {
	query := s.db.rebind("SELECT " + caseDefinitionColumns + " FROM case_definitions WHERE id = ?")
	c, err := scanCaseDefinition(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w: id %d", ErrCaseDefinitionNotFound, ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case definition: %w", err)
	}
	return c, nil
}

// ExistsByID reports whether a case definition with the given identity exists
func (s *CaseDefinitionStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := s.db.checkOpen(); err != nil {
		return false, err
	}

	query := s.db.rebind("SELECT 1 FROM case_definitions WHERE id = ?")
	var one int
	err := s.db.ReadDB.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check case definition existence: %w", err)
	}
	return true, nil
}

// FindAll returns one page of case definitions in the requested order
func (s *CaseDefinitionStore) FindAll(ctx context.Context, req core.PageRequest) ([]*core.CaseDefinition, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	query := "SELECT " + caseDefinitionColumns + " FROM case_definitions" +
		buildOrderBy(req.Sort, caseDefinitionSortColumns, "id") +
		" LIMIT ? OFFSET ?"

	rows, err := s.db.ReadDB.QueryContext(ctx, s.db.rebind(query), req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query case definitions: %w", err)
	}
	defer rows.Close()

	items := make([]*core.CaseDefinition, 0)
	for rows.Next() {
		c, err := scanCaseDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case definition: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate case definitions: %w", err)
	}

	return items, nil
}

// Count returns the number of stored case definitions
func (s *CaseDefinitionStore) Count(ctx context.Context) (int64, error) {
	if err := s.db.checkOpen(); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.ReadDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM case_definitions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count case definitions: %w", err)
	}
	return count, nil
}

// DeleteByID removes the case definition if present. Examines referencing it
// keep existing with the reference cleared. Deleting an absent identity is not an error.
func (s *CaseDefinitionStore) DeleteByID(ctx context.Context, id int64) error {
	if err := s.db.checkOpen(); err != nil {
		return err
	}

	result, err := s.db.WriteDB.ExecContext(ctx, s.db.rebind("DELETE FROM case_definitions WHERE id = ?"), id)
	if err != nil {
		return s.wrapWriteError("delete", err)
	}

	logDeleteResult(s.logger, core.EntityCaseDefinition, id, result)
	return nil
}

func (s *CaseDefinitionStore) wrapWriteError(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("failed to %s case definition: %w: %v", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("failed to %s case definition: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaseDefinition(row rowScanner) (*core.CaseDefinition, error) {
	var (
		id          int64
		name        sql.NullString
		description sql.NullString
		active      sql.NullBool
	)
	if err := row.Scan(&id, &name, &description, &active); err != nil {
		return nil, err
	}
	return &core.CaseDefinition{
		ID:          &id,
		Name:        nullStringPtr(name),
		Description: nullStringPtr(description),
		Active:      nullBoolPtr(active),
	}, nil
}
