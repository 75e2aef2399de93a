package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"casetracker/core"
	"casetracker/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// ============================================================================
// Mock Case Definition Storage
// ============================================================================

// mockCaseDefinitionStorage is an in-memory store; func fields override single calls
type mockCaseDefinitionStorage struct {
	mu     sync.Mutex
	nextID int64
	data   map[int64]*core.CaseDefinition

	saveFunc       func(ctx context.Context, c *core.CaseDefinition) (*core.CaseDefinition, error)
	findByIDFunc   func(ctx context.Context, id int64) (*core.CaseDefinition, error)
	existsByIDFunc func(ctx context.Context, id int64) (bool, error)
	deleteFunc     func(ctx context.Context, id int64) error

	saveCalls   int
	updateCalls int
}

func newMockCaseDefinitionStorage() *mockCaseDefinitionStorage {
	return &mockCaseDefinitionStorage{data: make(map[int64]*core.CaseDefinition)}
}

func (m *mockCaseDefinitionStorage) Save(ctx context.Context, c *core.CaseDefinition) (*core.CaseDefinition, error) {
	m.mu.Lock()
	m.saveCalls++
	m.mu.Unlock()
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := c.Clone()
	if stored.ID == nil {
		m.nextID++
		id := m.nextID
		stored.ID = &id
	} else if _, ok := m.data[*stored.ID]; !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrCaseDefinitionNotFound, storage.ErrNotFound)
	}
	m.data[*stored.ID] = stored
	return stored.Clone(), nil
}

func (m *mockCaseDefinitionStorage) FindByID(ctx context.Context, id int64) (*core.CaseDefinition, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrCaseDefinitionNotFound, storage.ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *mockCaseDefinitionStorage) Update(ctx context.Context, id int64, mutate func(*core.CaseDefinition)) (*core.CaseDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	c, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", storage.ErrCaseDefinitionNotFound, storage.ErrNotFound)
	}
	stored := c.Clone()
	mutate(stored)
	stored.ID = &id
	m.data[id] = stored
	return stored.Clone(), nil
}

func (m *mockCaseDefinitionStorage) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.existsByIDFunc != nil {
		return m.existsByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	return ok, nil
}

func (m *mockCaseDefinitionStorage) FindAll(ctx context.Context, req core.PageRequest) ([]*core.CaseDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]*core.CaseDefinition, 0, len(m.data))
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.data[id]; ok {
			items = append(items, c.Clone())
		}
	}
	start := min(req.Offset(), len(items))
	end := min(start+req.Size, len(items))
	return items[start:end], nil
}

func (m *mockCaseDefinitionStorage) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func (m *mockCaseDefinitionStorage) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }

func newTestCaseDefinitionService(store CaseDefinitionStorage) *CaseDefinitionServiceImpl {
	return NewCaseDefinitionService(store, zap.NewNop().Sugar())
}

func defaultCaseDefinition() *core.CaseDefinition {
	return &core.CaseDefinition{
		Name:        strPtr("AAAAAAAAAA"),
		Description: strPtr("AAAAAAAAAA"),
		Active:      boolPtr(false),
	}
}

func storeSize(t *testing.T, store CaseDefinitionStorage) int64 {
	t.Helper()
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	return n
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewCaseDefinitionService(t *testing.T) {
	assert.Panics(t, func() { NewCaseDefinitionService(nil, zap.NewNop().Sugar()) })
	assert.Panics(t, func() { NewCaseDefinitionService(newMockCaseDefinitionStorage(), nil) })
	assert.NotPanics(t, func() { NewCaseDefinitionService(newMockCaseDefinitionStorage(), zap.NewNop().Sugar()) })
}

// ============================================================================
// Create
// ============================================================================

func TestCaseDefinitionService_Create(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	before := storeSize(t, store)
	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Equal(t, before+1, storeSize(t, store))

	other, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	assert.NotEqual(t, *created.ID, *other.ID, "every create yields a fresh identity")
}

func TestCaseDefinitionService_CreateWithExistingID(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)

	input := defaultCaseDefinition()
	input.ID = int64Ptr(1)

	before := storeSize(t, store)
	_, err := svc.Create(context.Background(), input)

	var entityErr *core.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.ErrorIs(t, err, core.ErrIdentityConflict)
	assert.Equal(t, core.ErrorKeyIDExists, entityErr.Key)
	assert.Equal(t, core.EntityCaseDefinition, entityErr.Entity)
	assert.Equal(t, before, storeSize(t, store))
}

func TestCaseDefinitionService_CreateThenDeleteRestoresSize(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	before := storeSize(t, store)
	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, *created.ID))
	assert.Equal(t, before, storeSize(t, store))
}

// ============================================================================
// Replace
// ============================================================================

func TestCaseDefinitionService_Replace(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	id := *created.ID

	updated, err := svc.Replace(ctx, id, &core.CaseDefinition{ID: int64Ptr(id), Name: strPtr("BBBBBBBBBB"), Active: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBBBB", *updated.Name)
	assert.Nil(t, updated.Description, "absent optional fields become null on replace")
	assert.True(t, *updated.Active)
}

func TestCaseDefinitionService_ReplacePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		pathID  func(existing int64) int64
		bodyID  func(existing int64) *int64
		wantErr error
		wantKey string
	}{
		{
			name:    "missing body id",
			pathID:  func(e int64) int64 { return e },
			bodyID:  func(int64) *int64 { return nil },
			wantErr: core.ErrIdentityRequired,
			wantKey: core.ErrorKeyIDNull,
		},
		{
			name:    "path and body differ",
			pathID:  func(e int64) int64 { return e },
			bodyID:  func(e int64) *int64 { return int64Ptr(e + 1) },
			wantErr: core.ErrIdentityMismatch,
			wantKey: core.ErrorKeyIDInvalid,
		},
		{
			name:    "unknown identity",
			pathID:  func(int64) int64 { return math.MaxInt64 },
			bodyID:  func(int64) *int64 { return int64Ptr(math.MaxInt64) },
			wantErr: core.ErrNotFound,
			wantKey: core.ErrorKeyIDNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockCaseDefinitionStorage()
			svc := newTestCaseDefinitionService(store)
			ctx := context.Background()

			created, err := svc.Create(ctx, defaultCaseDefinition())
			require.NoError(t, err)
			existing := *created.ID

			body := &core.CaseDefinition{ID: tt.bodyID(existing), Name: strPtr("BBBBBBBBBB")}
			_, err = svc.Replace(ctx, tt.pathID(existing), body)

			var entityErr *core.EntityError
			require.ErrorAs(t, err, &entityErr)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKey, entityErr.Key)
			assert.True(t, entityErr.IsPrecondition())

			stored, err := store.FindByID(ctx, existing)
			require.NoError(t, err)
			assert.Equal(t, "AAAAAAAAAA", *stored.Name, "failed replace must not modify the store")
			assert.Equal(t, int64(1), storeSize(t, store))
		})
	}
}

func TestCaseDefinitionService_ReplaceRaceWithDelete(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	require.NoError(t, store.DeleteByID(ctx, *created.ID))
	store.existsByIDFunc = func(context.Context, int64) (bool, error) { return true, nil }

	_, err = svc.Replace(ctx, *created.ID, &core.CaseDefinition{ID: created.ID})

	var entityErr *core.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.Equal(t, core.ErrorKeyNotFound, entityErr.Key)
}

// ============================================================================
// PartialUpdate
// ============================================================================

func TestCaseDefinitionService_PartialUpdateKeepsAbsentFields(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &core.CaseDefinition{Name: strPtr("A"), Description: strPtr("B"), Active: boolPtr(false)})
	require.NoError(t, err)

	patch := &core.CaseDefinitionPatch{ID: created.ID, Name: core.Set("C")}
	updated, err := svc.PartialUpdate(ctx, *created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, "C", *updated.Name)
	assert.Equal(t, "B", *updated.Description)
	assert.False(t, *updated.Active)

	stored, err := store.FindByID(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	assert.Equal(t, 1, store.updateCalls, "read and write happen in one store call")
	assert.Equal(t, 1, store.saveCalls, "only Create saves")
}

func TestCaseDefinitionService_PartialUpdateNullClears(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)

	updated, err := svc.PartialUpdate(ctx, *created.ID, &core.CaseDefinitionPatch{
		ID:          created.ID,
		Description: core.Null[string](),
		Active:      core.Set(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAA", *updated.Name)
	assert.Nil(t, updated.Description)
	assert.True(t, *updated.Active)
}

func TestCaseDefinitionService_PartialUpdatePreconditions(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	id := *created.ID

	_, err = svc.PartialUpdate(ctx, id, &core.CaseDefinitionPatch{Name: core.Set("x")})
	assert.ErrorIs(t, err, core.ErrIdentityRequired)

	_, err = svc.PartialUpdate(ctx, id, &core.CaseDefinitionPatch{ID: int64Ptr(id + 1)})
	assert.ErrorIs(t, err, core.ErrIdentityMismatch)

	_, err = svc.PartialUpdate(ctx, math.MaxInt64, &core.CaseDefinitionPatch{ID: int64Ptr(math.MaxInt64)})
	var entityErr *core.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.Equal(t, core.ErrorKeyIDNotFound, entityErr.Key)
}

func TestCaseDefinitionService_PartialUpdateVanishedRecord(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)

	// Existence check passes, then a concurrent delete wins before the load
	store.existsByIDFunc = func(context.Context, int64) (bool, error) { return true, nil }
	require.NoError(t, store.DeleteByID(ctx, *created.ID))

	_, err = svc.PartialUpdate(ctx, *created.ID, &core.CaseDefinitionPatch{ID: created.ID, Name: core.Set("x")})

	var entityErr *core.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, core.ErrorKeyNotFound, entityErr.Key)
	assert.False(t, entityErr.IsPrecondition())
}

// ============================================================================
// Get / List / Delete
// ============================================================================

func TestCaseDefinitionService_GetMissing(t *testing.T) {
	svc := newTestCaseDefinitionService(newMockCaseDefinitionStorage())

	_, err := svc.Get(context.Background(), math.MaxInt64)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCaseDefinitionService_GetStorageFailure(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	storageErr := errors.New("disk on fire")
	store.findByIDFunc = func(context.Context, int64) (*core.CaseDefinition, error) { return nil, storageErr }
	svc := newTestCaseDefinitionService(store)

	_, err := svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, storageErr)

	var entityErr *core.EntityError
	assert.False(t, errors.As(err, &entityErr))
}

func TestCaseDefinitionService_List(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, defaultCaseDefinition())
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, core.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages())

	defaulted, err := svc.List(ctx, core.PageRequest{Page: -3, Size: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, defaulted.Page)
	assert.Equal(t, core.DefaultPageSize, defaulted.Size)
	assert.Len(t, defaulted.Items, 5)
}

func TestCaseDefinitionService_DeleteMissingSucceeds(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	svc := newTestCaseDefinitionService(store)

	before := storeSize(t, store)
	assert.NoError(t, svc.Delete(context.Background(), math.MaxInt64))
	assert.Equal(t, before, storeSize(t, store))
}

func TestCaseDefinitionService_DeleteStorageFailure(t *testing.T) {
	store := newMockCaseDefinitionStorage()
	store.deleteFunc = func(context.Context, int64) error { return storage.ErrDatabaseClosed }
	svc := newTestCaseDefinitionService(store)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), storage.ErrDatabaseClosed)
}

// ============================================================================
// Tracing
// ============================================================================

func TestCaseDefinitionService_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	svc := NewCaseDefinitionService(newMockCaseDefinitionStorage(), zap.NewNop().Sugar(), WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	created, err := svc.Create(ctx, defaultCaseDefinition())
	require.NoError(t, err)
	_, err = svc.Create(ctx, created)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "CaseDefinitionService.Create", spans[0].Name)
	assert.Empty(t, spans[0].Events, "successful operation records no error")
	assert.NotEmpty(t, spans[1].Events, "failed operation records the error")

	var outcome string
	for _, attr := range spans[1].Attributes {
		if attr.Key == "outcome" {
			outcome = attr.Value.AsString()
		}
	}
	assert.Equal(t, core.ErrorKeyIDExists, outcome)
}
