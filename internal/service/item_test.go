package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockItemRepo implements repository.ItemRepository in memory. failWith
// makes every call return that error so the tests can simulate a broken
// database.

type mockItemRepo struct {
	mu       sync.Mutex
	items    map[int64]*model.Item
	order    []int64
	nextID   int64
	clock    *repository.Clock
	failWith error
}

func newMockRepo() *mockItemRepo {
	return &mockItemRepo{
		items: make(map[int64]*model.Item),
		clock: repository.NewClock(),
	}
}

func (m *mockItemRepo) ListItems(_ context.Context, userID string) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := make([]model.Item, 0)
	for _, id := range m.order {
		if item, ok := m.items[id]; ok && item.UserID == userID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockItemRepo) CreateItem(_ context.Context, in repository.NewItem) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	now := m.clock.Now()
	item := &model.Item{
		ID: m.nextID, Name: in.Name, Quantity: in.Quantity, Category: in.Category,
		Completed: in.Completed, UserID: in.UserID, CreatedAt: now, UpdatedAt: now,
	}
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	result := *item
	return &result, nil
}

func (m *mockItemRepo) UpdateItem(_ context.Context, id int64, u repository.ItemUpdate) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	item, ok := m.items[id]
	if !ok {
		return nil, apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Quantity != nil {
		item.Quantity = *u.Quantity
	}
	if u.Category != nil {
		item.Category = *u.Category
	}
	if u.Completed != nil {
		item.Completed = *u.Completed
	}
	item.UpdatedAt = m.clock.Now()
	result := *item
	return &result, nil
}

func (m *mockItemRepo) ToggleComplete(_ context.Context, id int64) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	item, ok := m.items[id]
	if !ok {
		return nil, apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}
	item.Completed = !item.Completed
	item.UpdatedAt = m.clock.Now()
	result := *item
	return &result, nil
}

func (m *mockItemRepo) DeleteItem(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *mockItemRepo) ResetAll(ctx context.Context, userID string) ([]model.Item, error) {
	m.mu.Lock()
	if m.failWith != nil {
		m.mu.Unlock()
		return nil, m.failWith
	}
	now := m.clock.Now()
	for _, item := range m.items {
		if item.UserID == userID {
			item.Completed = false
			item.UpdatedAt = now
		}
	}
	m.mu.Unlock()
	return m.ListItems(ctx, userID)
}

func (m *mockItemRepo) Ping(context.Context) error {
	return m.failWith
}

// =========================================================================
// TEST HELPER
// =========================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T) (*ItemService, *mockItemRepo) {
	t.Helper()
	repo := newMockRepo()
	return NewItemService(repo, newTestLogger()), repo
}

func milk() CreateItemInput {
	return CreateItemInput{Name: "Milk", Quantity: "1", Category: "dairy", UserID: "user1"}
}

func ptr[T any](v T) *T { return &v }

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Equal(t, "Milk", item.Name)
	assert.False(t, item.Completed)
	assert.Equal(t, "user1", item.UserID)
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(context.Background(), CreateItemInput{
		Name: "  Eggs  ", Quantity: " 12 ", Category: " dairy ", UserID: "user1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Eggs", item.Name)
	assert.Equal(t, "12", item.Quantity)
	assert.Equal(t, "dairy", item.Category)
}

func TestCreate_UnknownCategoryAccepted(t *testing.T) {
	svc, _ := newTestService(t)

	in := milk()
	in.Category = "electronics"
	item, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "electronics", item.Category)
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateItemInput
		wantFields []string
	}{
		{
			name:       "empty name",
			input:      CreateItemInput{Quantity: "1", Category: "dairy", UserID: "user1"},
			wantFields: []string{"name"},
		},
		{
			name:       "whitespace quantity",
			input:      CreateItemInput{Name: "Milk", Quantity: "   ", Category: "dairy", UserID: "user1"},
			wantFields: []string{"quantity"},
		},
		{
			name:       "everything missing",
			input:      CreateItemInput{},
			wantFields: []string{"name", "quantity", "category", "userId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			_, err := svc.Create(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			var fields []string
			for _, d := range appErr.Details {
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
			assert.Empty(t, repo.items, "nothing should be stored")
		})
	}
}

func TestCreate_RepositoryFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failWith = errors.New("disk full")

	_, err := svc.Create(context.Background(), milk())
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Error(), "disk full")
}

func TestCreate_IDsStrictlyIncrease(t *testing.T) {
	svc, _ := newTestService(t)

	var last int64
	for i := 0; i < 10; i++ {
		item, err := svc.Create(context.Background(), milk())
		require.NoError(t, err)
		assert.Greater(t, item.ID, last)
		last = item.ID
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate_Success(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, repository.ItemUpdate{
		Name:      ptr("  Oat milk "),
		Completed: ptr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "Oat milk", updated.Name)
	assert.Equal(t, "1", updated.Quantity)
	assert.True(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_BlankFieldRejected(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, repository.ItemUpdate{Name: ptr("  ")})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestUpdate_NotFound(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Update(context.Background(), 42, repository.ItemUpdate{Name: ptr("x")})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Empty(t, repo.items)
}

// =========================================================================
// TOGGLE TESTS
// =========================================================================

func TestToggle_TwiceRestores(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	first, err := svc.Toggle(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := svc.Toggle(context.Background(), created.ID)
	require.NoError(t, err)

	assert.True(t, first.Completed)
	assert.False(t, second.Completed)
	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestToggle_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Toggle(context.Background(), 7)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestToggle_RepositoryFailureIsNotNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failWith = errors.New("connection reset")

	_, err := svc.Toggle(context.Background(), 7)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_Twice(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	err = svc.Delete(context.Background(), created.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDelete_NotFoundLeavesOthers(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	items, err := svc.List(context.Background(), "user1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// =========================================================================
// LIST / RESET TESTS
// =========================================================================

func TestList_ScopedToUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), milk())
	require.NoError(t, err)
	other := milk()
	other.UserID = "user2"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)

	items, err := svc.List(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "user1", items[0].UserID)
}

func TestResetAll_ThenListHasNoCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		item, err := svc.Create(ctx, milk())
		require.NoError(t, err)
		_, err = svc.Toggle(ctx, item.ID)
		require.NoError(t, err)
	}

	before := time.Now().Add(-time.Second)
	reset, err := svc.ResetAll(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, reset, 3)

	items, err := svc.List(ctx, "user1")
	require.NoError(t, err)
	for _, item := range items {
		assert.False(t, item.Completed)
		assert.True(t, item.UpdatedAt.After(before))
	}
}

func TestResetAll_RepositoryFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failWith = errors.New("boom")

	_, err := svc.ResetAll(context.Background(), "user1")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	svc, repo := newTestService(t)
	assert.NoError(t, svc.Ping(context.Background()))

	repo.failWith = errors.New("down")
	assert.Error(t, svc.Ping(context.Background()))
}
