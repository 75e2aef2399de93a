package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"casetracker/core"

	"go.uber.org/zap"
)

// examineSelect resolves the case definition reference on read
const examineSelect = `SELECT e.id, e.name, e.case_definition_id,
		c.id, c.name, c.description, c.active
	FROM examines e
	LEFT JOIN case_definitions c ON c.id = e.case_definition_id`

// examineSortColumns maps API sort properties to columns
var examineSortColumns = map[string]string{
	"id":                "e.id",
	"name":              "e.name",
	"caseDefinitionId":  "e.case_definition_id",
	"caseDefinition.id": "e.case_definition_id",
}

// ExamineStore persists examines
type ExamineStore struct {
	db     *Database
	logger *zap.SugaredLogger
}

// NewExamineStore creates an examine store over db
func NewExamineStore(db *Database, logger *zap.SugaredLogger) *ExamineStore {
	return &ExamineStore{
		db:     db,
		logger: logger,
	}
}

// Save inserts the entity when it has no identity and overwrites every column
// otherwise. A reference to a missing case definition fails with ErrConstraintViolation.
func (s *ExamineStore) Save(ctx context.Context, e *core.Examine) (*core.Examine, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	if !e.HasIdentity() {
		query := s.db.rebind("INSERT INTO examines (name, case_definition_id) VALUES (?, ?) RETURNING id")
		var id int64
		err := s.db.WriteDB.QueryRowContext(ctx, query, e.Name, e.CaseDefinitionID).Scan(&id)
		if err != nil {
			return nil, s.wrapWriteError("insert", err)
		}
		s.logger.Debugw("Examine inserted", "id", id)
		return s.findByID(ctx, s.db.WriteDB, id)
	}

	if err := s.update(ctx, s.db.WriteDB, e); err != nil {
		return nil, err
	}
	return s.findByID(ctx, s.db.WriteDB, *e.ID)
}

// Update loads the examine, applies mutate and writes the columns back within
// one transaction. The returned examine carries its resolved case definition.
func (s *ExamineStore) Update(ctx context.Context, id int64, mutate func(*core.Examine)) (*core.Examine, error) {
	var saved *core.Examine
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

func (s *ExamineStore) update(ctx context.Context, q querier, e *core.Examine) error {
	query := s.db.rebind("UPDATE examines SET name = ?, case_definition_id = ? WHERE id = ?")
	result, err := q.ExecContext(ctx, query, e.Name, e.CaseDefinitionID, *e.ID)
	if err != nil {
		return s.wrapWriteError("update", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %w: id %d", ErrExamineNotFound, ErrNotFound, *e.ID)
	}
	return nil
}

// FindByID returns the examine with the given identity and its resolved case definition
func (s *ExamineStore) FindByID(ctx context.Context, id int64) (*core.Examine, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	return s.findByID(ctx, s.db.ReadDB, id)
}

func (s *ExamineStore) findByID(ctx context.Context, q querier, id int64) (*core.Examine, error) {
	e, err := scanExamine(q.QueryRowContext(ctx, s.db.rebind(examineSelect+" WHERE e.id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w: id %d", ErrExamineNotFound, ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get examine: %w", err)
	}
	return e, nil
}

// ExistsByID reports whether an examine with the given identity exists
func (s *ExamineStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := s.db.checkOpen(); err != nil {
		return false, err
	}

	var one int
	err := s.db.ReadDB.QueryRowContext(ctx, s.db.rebind("SELECT 1 FROM examines WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check examine existence: %w", err)
	}
	return true, nil
}

// FindAll returns one page of examines in the requested order
func (s *ExamineStore) FindAll(ctx context.Context, req core.PageRequest) ([]*core.Examine, error) {
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}

	query := examineSelect + buildOrderBy(req.Sort, examineSortColumns, "e.id") + " LIMIT ? OFFSET ?"

	rows, err := s.db.ReadDB.QueryContext(ctx, s.db.rebind(query), req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query examines: %w", err)
	}
	defer rows.Close()

	items := make([]*core.Examine, 0)
	for rows.Next() {
		e, err := scanExamine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan examine: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate examines: %w", err)
	}

	return items, nil
}

// Count returns the number of stored examines
func (s *ExamineStore) Count(ctx context.Context) (int64, error) {
	if err := s.db.checkOpen(); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.ReadDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM examines").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count examines: %w", err)
	}
	return count, nil
}

// DeleteByID removes the examine if present. The referenced case definition is
// never touched. Deleting an absent identity is not an error.
func (s *ExamineStore) DeleteByID(ctx context.Context, id int64) error {
	if err := s.db.checkOpen(); err != nil {
		return err
	}

	result, err := s.db.WriteDB.ExecContext(ctx, s.db.rebind("DELETE FROM examines WHERE id = ?"), id)
	if err != nil {
		return s.wrapWriteError("delete", err)
	}

	logDeleteResult(s.logger, core.EntityExamine, id, result)
	return nil
}

func (s *ExamineStore) wrapWriteError(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("failed to %s examine: %w: %v", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("failed to %s examine: %w", op, err)
}

func scanExamine(row rowScanner) (*core.Examine, error) {
	var (
		id        int64
		name      sql.NullString
		caseDefID sql.NullInt64
		refID     sql.NullInt64
		refName   sql.NullString
		refDesc   sql.NullString
		refActive sql.NullBool
	)
	if err := row.Scan(&id, &name, &caseDefID, &refID, &refName, &refDesc, &refActive); err != nil {
		return nil, err
	}

	e := &core.Examine{
		ID:               &id,
		Name:             nullStringPtr(name),
		CaseDefinitionID: nullInt64Ptr(caseDefID),
	}
	if refID.Valid {
		e.CaseDefinition = &core.CaseDefinition{
			ID:          nullInt64Ptr(refID),
			Name:        nullStringPtr(refName),
			Description: nullStringPtr(refDesc),
			Active:      nullBoolPtr(refActive),
		}
	}
	return e, nil
}
