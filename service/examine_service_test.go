package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"casetracker/core"
	"casetracker/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockExamineStorage records saved examines; func fields override single calls
type mockExamineStorage struct {
	nextID int64
	data   map[int64]*core.Examine
	saved  []*core.Examine

	saveFunc       func(ctx context.Context, e *core.Examine) (*core.Examine, error)
	updateFunc     func(ctx context.Context, id int64, mutate func(*core.Examine)) (*core.Examine, error)
	existsByIDFunc func(ctx context.Context, id int64) (bool, error)
	updateCalls    int
}

func newMockExamineStorage() *mockExamineStorage {
	return &mockExamineStorage{data: make(map[int64]*core.Examine)}
}

func (m *mockExamineStorage) Save(ctx context.Context, e *core.Examine) (*core.Examine, error) {
	m.saved = append(m.saved, e.Clone())
	if m.saveFunc != nil {
		return m.saveFunc(ctx, e)
	}

	stored := e.Clone()
	if stored.ID == nil {
		m.nextID++
		id := m.nextID
		stored.ID = &id
	} else if _, ok := m.data[*stored.ID]; !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrExamineNotFound, storage.ErrNotFound)
	}
	if stored.CaseDefinitionID != nil {
		stored.CaseDefinition = &core.CaseDefinition{ID: int64Ptr(*stored.CaseDefinitionID)}
	}
	m.data[*stored.ID] = stored
	return stored.Clone(), nil
}

func (m *mockExamineStorage) FindByID(ctx context.Context, id int64) (*core.Examine, error) {
	e, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrExamineNotFound, storage.ErrNotFound)
	}
	return e.Clone(), nil
}

func (m *mockExamineStorage) Update(ctx context.Context, id int64, mutate func(*core.Examine)) (*core.Examine, error) {
	m.updateCalls++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, mutate)
	}

	e, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrExamineNotFound, storage.ErrNotFound)
	}
	stored := e.Clone()
	mutate(stored)
	stored.ID = &id
	if stored.CaseDefinitionID != nil {
		stored.CaseDefinition = &core.CaseDefinition{ID: int64Ptr(*stored.CaseDefinitionID)}
	}
	m.data[id] = stored
	return stored.Clone(), nil
}

func (m *mockExamineStorage) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.existsByIDFunc != nil {
		return m.existsByIDFunc(ctx, id)
	}
	_, ok := m.data[id]
	return ok, nil
}

func (m *mockExamineStorage) FindAll(ctx context.Context, req core.PageRequest) ([]*core.Examine, error) {
	items := make([]*core.Examine, 0, len(m.data))
	for id := int64(1); id <= m.nextID; id++ {
		if e, ok := m.data[id]; ok {
			items = append(items, e.Clone())
		}
	}
	start := min(req.Offset(), len(items))
	end := min(start+req.Size, len(items))
	return items[start:end], nil
}

func (m *mockExamineStorage) Count(ctx context.Context) (int64, error) {
	return int64(len(m.data)), nil
}

func (m *mockExamineStorage) DeleteByID(ctx context.Context, id int64) error {
	delete(m.data, id)
	return nil
}

func newTestExamineService(store ExamineStorage) *ExamineServiceImpl {
	return NewExamineService(store, zap.NewNop().Sugar())
}

func TestNewExamineService(t *testing.T) {
	assert.Panics(t, func() { NewExamineService(nil, zap.NewNop().Sugar()) })
	assert.Panics(t, func() { NewExamineService(newMockExamineStorage(), nil) })
}

func TestExamineService_CreateNormalizesNestedReference(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)

	input := &core.Examine{Name: strPtr("AAAAAAAAAA"), CaseDefinition: &core.CaseDefinition{ID: int64Ptr(7)}}
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	require.NotNil(t, store.saved[0].CaseDefinitionID)
	assert.Equal(t, int64(7), *store.saved[0].CaseDefinitionID)
	assert.Nil(t, store.saved[0].CaseDefinition, "nested object is not sent to storage")

	assert.NotNil(t, input.CaseDefinition, "caller input is left untouched")
	require.NotNil(t, created.CaseDefinition)
	assert.Equal(t, int64(7), *created.CaseDefinition.ID)
}

func TestExamineService_CreateWithExistingID(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)

	_, err := svc.Create(context.Background(), &core.Examine{ID: int64Ptr(1)})
	assert.ErrorIs(t, err, core.ErrIdentityConflict)
	assert.Empty(t, store.saved)
}

func TestExamineService_CreateMissingReference(t *testing.T) {
	store := newMockExamineStorage()
	store.saveFunc = func(context.Context, *core.Examine) (*core.Examine, error) {
		return nil, fmt.Errorf("failed to insert examine: %w", storage.ErrConstraintViolation)
	}
	svc := newTestExamineService(store)

	_, err := svc.Create(context.Background(), &core.Examine{CaseDefinitionID: int64Ptr(99)})
	assert.ErrorIs(t, err, storage.ErrConstraintViolation)
}

func TestExamineService_ReplacePreconditions(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &core.Examine{Name: strPtr("AAAAAAAAAA")})
	require.NoError(t, err)
	id := *created.ID

	_, err = svc.Replace(ctx, id, &core.Examine{Name: strPtr("x")})
	assert.ErrorIs(t, err, core.ErrIdentityRequired)

	_, err = svc.Replace(ctx, id, &core.Examine{ID: int64Ptr(id + 1)})
	assert.ErrorIs(t, err, core.ErrIdentityMismatch)

	_, err = svc.Replace(ctx, math.MaxInt64, &core.Examine{ID: int64Ptr(math.MaxInt64)})
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Len(t, store.saved, 1, "only the create reached storage")
}

func TestExamineService_ReplaceClearsReference(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &core.Examine{Name: strPtr("AAAAAAAAAA"), CaseDefinitionID: int64Ptr(3)})
	require.NoError(t, err)

	replaced, err := svc.Replace(ctx, *created.ID, &core.Examine{ID: created.ID, Name: strPtr("BBBBBBBBBB")})
	require.NoError(t, err)
	assert.Nil(t, replaced.CaseDefinitionID)
	assert.Nil(t, replaced.CaseDefinition)
}

func TestExamineService_PartialUpdate(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &core.Examine{Name: strPtr("AAAAAAAAAA"), CaseDefinitionID: int64Ptr(3)})
	require.NoError(t, err)

	updated, err := svc.PartialUpdate(ctx, *created.ID, &core.ExaminePatch{ID: created.ID, Name: core.Set("BBBBBBBBBB")})
	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBBBB", *updated.Name)
	assert.Equal(t, int64(3), *updated.CaseDefinitionID, "absent reference is kept")

	moved, err := svc.PartialUpdate(ctx, *created.ID, &core.ExaminePatch{ID: created.ID, CaseDefinitionID: core.Set(int64(4))})
	require.NoError(t, err)
	assert.Equal(t, int64(4), *moved.CaseDefinition.ID)

	assert.Equal(t, 2, store.updateCalls)
	assert.Len(t, store.saved, 1, "only Create saves")
}

func TestExamineService_PartialUpdateConstraintViolation(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &core.Examine{Name: strPtr("AAAAAAAAAA")})
	require.NoError(t, err)

	store.updateFunc = func(context.Context, int64, func(*core.Examine)) (*core.Examine, error) {
		return nil, fmt.Errorf("failed to update examine: %w", storage.ErrConstraintViolation)
	}
	_, err = svc.PartialUpdate(ctx, *created.ID, &core.ExaminePatch{ID: created.ID, CaseDefinitionID: core.Set(int64(99))})
	assert.ErrorIs(t, err, storage.ErrConstraintViolation)

	var entityErr *core.EntityError
	assert.False(t, errors.As(err, &entityErr))
}

func TestExamineService_PartialUpdateVanishedRecord(t *testing.T) {
	store := newMockExamineStorage()
	store.existsByIDFunc = func(context.Context, int64) (bool, error) { return true, nil }
	svc := newTestExamineService(store)

	_, err := svc.PartialUpdate(context.Background(), 5, &core.ExaminePatch{ID: int64Ptr(5)})

	var entityErr *core.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.Equal(t, core.ErrorKeyNotFound, entityErr.Key)
}

func TestExamineService_GetListDelete(t *testing.T) {
	store := newMockExamineStorage()
	svc := newTestExamineService(store)
	ctx := context.Background()

	_, err := svc.Get(ctx, math.MaxInt64)
	assert.ErrorIs(t, err, core.ErrNotFound)

	created, err := svc.Create(ctx, &core.Examine{Name: strPtr("AAAAAAAAAA")})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, *created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.SameIdentity(created))

	page, err := svc.List(ctx, core.PageRequest{Size: 5000})
	require.NoError(t, err)
	assert.Equal(t, core.MaxPageSize, page.Size)
	assert.Len(t, page.Items, 1)

	require.NoError(t, svc.Delete(ctx, *created.ID))
	require.NoError(t, svc.Delete(ctx, *created.ID))
	count, _ := store.Count(ctx)
	assert.Equal(t, int64(0), count)
}
