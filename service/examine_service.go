package service

import (
	"context"
	"errors"
	"fmt"

	"casetracker/core"
	"casetracker/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExamineStorage defines the persistence operations the service needs.
// Implemented by *storage.ExamineStore.
type ExamineStorage interface {
	Save(ctx context.Context, e *core.Examine) (*core.Examine, error)
	FindByID(ctx context.Context, id int64) (*core.Examine, error)
	Update(ctx context.Context, id int64, mutate func(*core.Examine)) (*core.Examine, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context, req core.PageRequest) ([]*core.Examine, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ExamineServiceImpl enforces the identity rules for examines. The case
// definition reference is passed through to storage, which rejects references
// to missing case definitions with storage.ErrConstraintViolation.
type ExamineServiceImpl struct {
	store  ExamineStorage
	logger *zap.SugaredLogger
	tracer trace.Tracer
}

// NewExamineService creates an ExamineServiceImpl.
// Panics if store or logger is nil.
func NewExamineService(store ExamineStorage, logger *zap.SugaredLogger, opts ...Option) *ExamineServiceImpl {
	if store == nil {
		panic("store is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	o := buildOptions(opts)
	return &ExamineServiceImpl{
		store:  store,
		logger: logger,
		tracer: o.tracer,
	}
}

func (s *ExamineServiceImpl) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ExamineService."+op,
		trace.WithAttributes(append(attrs, attribute.String("entity", core.EntityExamine))...))
}

// Create persists a new examine. The input must not carry an identity.
func (s *ExamineServiceImpl) Create(ctx context.Context, e *core.Examine) (_ *core.Examine, err error) {
	ctx, span := s.start(ctx, "Create")
	defer func() { finishOperation(span, core.EntityExamine, opCreate, err) }()

	s.logger.Debugw("Request to save Examine", "examine", e)

	if e.HasIdentity() {
		return nil, core.NewIdentityConflict(core.EntityExamine)
	}

	input := e.Clone()
	input.NormalizeReference()

	saved, err := s.store.Save(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create examine: %w", err)
	}

	span.SetAttributes(attribute.Int64("id", *saved.ID))
	return saved, nil
}

func (s *ExamineServiceImpl) checkUpdateIdentity(ctx context.Context, pathID int64, bodyID *int64) error {
	if bodyID == nil {
		return core.NewIdentityRequired(core.EntityExamine)
	}
	if *bodyID != pathID {
		return core.NewIdentityMismatch(core.EntityExamine, pathID, *bodyID)
	}

	exists, err := s.store.ExistsByID(ctx, pathID)
	if err != nil {
		return fmt.Errorf("failed to check examine %d: %w", pathID, err)
	}
	if !exists {
		return core.NewIdentityNotFound(core.EntityExamine, pathID)
	}
	return nil
}

// Replace overwrites every field of an existing examine, including its reference.
func (s *ExamineServiceImpl) Replace(ctx context.Context, pathID int64, e *core.Examine) (_ *core.Examine, err error) {
	ctx, span := s.start(ctx, "Replace", attribute.Int64("id", pathID))
	defer func() { finishOperation(span, core.EntityExamine, opReplace, err) }()

	s.logger.Debugw("Request to update Examine", "id", pathID, "examine", e)

	if err := s.checkUpdateIdentity(ctx, pathID, e.ID); err != nil {
		return nil, err
	}

	input := e.Clone()
	input.NormalizeReference()

	saved, err := s.store.Save(ctx, input)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityExamine, pathID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to replace examine %d: %w", pathID, err)
	}
	return saved, nil
}

// PartialUpdate merges the fields present in patch into the stored examine.
func (s *ExamineServiceImpl) PartialUpdate(ctx context.Context, pathID int64, patch *core.ExaminePatch) (_ *core.Examine, err error) {
	ctx, span := s.start(ctx, "PartialUpdate", attribute.Int64("id", pathID))
	defer func() { finishOperation(span, core.EntityExamine, opPartialUpdate, err) }()

	s.logger.Debugw("Request to partially update Examine", "id", pathID)

	if err := s.checkUpdateIdentity(ctx, pathID, patch.ID); err != nil {
		return nil, err
	}

	// The record may have been deleted since the existence check
	saved, err := s.store.Update(ctx, pathID, patch.ApplyTo)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityExamine, pathID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update examine %d: %w", pathID, err)
	}
	return saved, nil
}

// Get returns the examine with the given identity and its resolved case definition.
func (s *ExamineServiceImpl) Get(ctx context.Context, id int64) (_ *core.Examine, err error) {
	ctx, span := s.start(ctx, "Get", attribute.Int64("id", id))
	defer func() { finishOperation(span, core.EntityExamine, opGet, err) }()

	s.logger.Debugw("Request to get Examine", "id", id)

	e, err := s.store.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityExamine, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get examine %d: %w", id, err)
	}
	return e, nil
}

// List returns one page of examines and the total count.
func (s *ExamineServiceImpl) List(ctx context.Context, req core.PageRequest) (_ *core.Page[*core.Examine], err error) {
	ctx, span := s.start(ctx, "List")
	defer func() { finishOperation(span, core.EntityExamine, opList, err) }()

	req = normalizePageRequest(req)
	s.logger.Debugw("Request to get a page of Examines", "page", req.Page, "size", req.Size)

	items, err := s.store.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list examines: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count examines: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	return core.NewPage(items, total, req), nil
}

// Delete removes the examine if it exists. The referenced case definition is kept.
func (s *ExamineServiceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.start(ctx, "Delete", attribute.Int64("id", id))
	defer func() { finishOperation(span, core.EntityExamine, opDelete, err) }()

	s.logger.Debugw("Request to delete Examine", "id", id)

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete examine %d: %w", id, err)
	}
	return nil
}
