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

// CaseDefinitionStorage defines the persistence operations the service needs.
// Implemented by *storage.CaseDefinitionStore.
type CaseDefinitionStorage interface {
	Save(ctx context.Context, c *core.CaseDefinition) (*core.CaseDefinition, error)
	FindByID(ctx context.Context, id int64) (*core.CaseDefinition, error)
	Update(ctx context.Context, id int64, mutate func(*core.CaseDefinition)) (*core.CaseDefinition, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context, req core.PageRequest) ([]*core.CaseDefinition, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
}

// CaseDefinitionServiceImpl enforces the identity rules for case definitions
// and delegates persistence to CaseDefinitionStorage.
//
// Errors returned for rule violations are *core.EntityError values; storage
// failures are wrapped and passed through.
type CaseDefinitionServiceImpl struct {
	store  CaseDefinitionStorage
	logger *zap.SugaredLogger
	tracer trace.Tracer
}

// NewCaseDefinitionService creates a CaseDefinitionServiceImpl.
// Panics if store or logger is nil.
func NewCaseDefinitionService(store CaseDefinitionStorage, logger *zap.SugaredLogger, opts ...Option) *CaseDefinitionServiceImpl {
	if store == nil {
		panic("store is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	o := buildOptions(opts)
	return &CaseDefinitionServiceImpl{
		store:  store,
		logger: logger,
		tracer: o.tracer,
	}
}

func (s *CaseDefinitionServiceImpl) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "CaseDefinitionService."+op,
		trace.WithAttributes(append(attrs, attribute.String("entity", core.EntityCaseDefinition))...))
}

// Create persists a new case definition. The input must not carry an identity.
func (s *CaseDefinitionServiceImpl) Create(ctx context.Context, c *core.CaseDefinition) (_ *core.CaseDefinition, err error) {
	ctx, span := s.start(ctx, "Create")
	defer func() { finishOperation(span, core.EntityCaseDefinition, opCreate, err) }()

	s.logger.Debugw("Request to save CaseDefinition", "caseDefinition", c)

	if c.HasIdentity() {
		return nil, core.NewIdentityConflict(core.EntityCaseDefinition)
	}

	saved, err := s.store.Save(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create case definition: %w", err)
	}

	span.SetAttributes(attribute.Int64("id", *saved.ID))
	return saved, nil
}

// checkUpdateIdentity validates the identity chain shared by Replace and PartialUpdate:
// body identity present, equal to the path identity and already persisted.
func (s *CaseDefinitionServiceImpl) checkUpdateIdentity(ctx context.Context, pathID int64, bodyID *int64) error {
	if bodyID == nil {
		return core.NewIdentityRequired(core.EntityCaseDefinition)
	}
	if *bodyID != pathID {
		return core.NewIdentityMismatch(core.EntityCaseDefinition, pathID, *bodyID)
	}

	exists, err := s.store.ExistsByID(ctx, pathID)
	if err != nil {
		return fmt.Errorf("failed to check case definition %d: %w", pathID, err)
	}
	if !exists {
		return core.NewIdentityNotFound(core.EntityCaseDefinition, pathID)
	}
	return nil
}

// Replace overwrites every field of an existing case definition.
// Optional fields absent from c become null.
func (s *CaseDefinitionServiceImpl) Replace(ctx context.Context, pathID int64, c *core.CaseDefinition) (_ *core.CaseDefinition, err error) {
	ctx, span := s.start(ctx, "Replace", attribute.Int64("id", pathID))
	defer func() { finishOperation(span, core.EntityCaseDefinition, opReplace, err) }()

	s.logger.Debugw("Request to update CaseDefinition", "id", pathID, "caseDefinition", c)

	if err := s.checkUpdateIdentity(ctx, pathID, c.ID); err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, c)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityCaseDefinition, pathID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to replace case definition %d: %w", pathID, err)
	}
	return saved, nil
}

// PartialUpdate merges the fields present in patch into the stored case definition.
func (s *CaseDefinitionServiceImpl) PartialUpdate(ctx context.Context, pathID int64, patch *core.CaseDefinitionPatch) (_ *core.CaseDefinition, err error) {
	ctx, span := s.start(ctx, "PartialUpdate", attribute.Int64("id", pathID))
	defer func() { finishOperation(span, core.EntityCaseDefinition, opPartialUpdate, err) }()

	s.logger.Debugw("Request to partially update CaseDefinition", "id", pathID)

	if err := s.checkUpdateIdentity(ctx, pathID, patch.ID); err != nil {
		return nil, err
	}

	// The record may have been deleted since the existence check
	saved, err := s.store.Update(ctx, pathID, patch.ApplyTo)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityCaseDefinition, pathID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update case definition %d: %w", pathID, err)
	}
	return saved, nil
}

// Get returns the case definition with the given identity.
func (s *CaseDefinitionServiceImpl) Get(ctx context.Context, id int64) (_ *core.CaseDefinition, err error) {
	ctx, span := s.start(ctx, "Get", attribute.Int64("id", id))
	defer func() { finishOperation(span, core.EntityCaseDefinition, opGet, err) }()

	s.logger.Debugw("Request to get CaseDefinition", "id", id)

	c, err := s.store.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.NewNotFound(core.EntityCaseDefinition, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case definition %d: %w", id, err)
	}
	return c, nil
}

// List returns one page of case definitions and the total count.
func (s *CaseDefinitionServiceImpl) List(ctx context.Context, req core.PageRequest) (_ *core.Page[*core.CaseDefinition], err error) {
	ctx, span := s.start(ctx, "List")
	defer func() { finishOperation(span, core.EntityCaseDefinition, opList, err) }()

	req = normalizePageRequest(req)
	s.logger.Debugw("Request to get a page of CaseDefinitions", "page", req.Page, "size", req.Size)

	items, err := s.store.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list case definitions: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count case definitions: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	return core.NewPage(items, total, req), nil
}

// Delete removes the case definition if it exists. Deleting an absent identity succeeds.
func (s *CaseDefinitionServiceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.start(ctx, "Delete", attribute.Int64("id", id))
	defer func() { finishOperation(span, core.EntityCaseDefinition, opDelete, err) }()

	s.logger.Debugw("Request to delete CaseDefinition", "id", id)

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete case definition %d: %w", id, err)
	}
	return nil
}
