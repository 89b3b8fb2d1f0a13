package view

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/student"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/banner"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newStore() *student.Service {
	return student.New(memory.New(), student.Options{Logger: discard})
}

func jon() types.Fields {
	return types.Fields{Name: "Jon Snow", Email: "jon@wall.example", Course: "History", Marks: 70, Result: types.ResultPass}
}

// blockingStore holds Add and GetByID until release is closed.
type blockingStore struct {
	Store
	release chan struct{}
}

func (b *blockingStore) Add(ctx context.Context, fields types.Fields) (types.Student, error) {
	<-b.release
	return b.Store.Add(ctx, fields)
}

func (b *blockingStore) GetByID(ctx context.Context, id int64) (types.Student, error) {
	<-b.release
	return b.Store.GetByID(ctx, id)
}

// failingStore fails every call.
type failingStore struct{ Store }

var errBoom = errors.New("boom")

func (failingStore) List(context.Context) ([]types.Student, error) { return nil, errBoom }
func (failingStore) Delete(context.Context, int64) error           { return errBoom }
func (failingStore) Add(context.Context, types.Fields) (types.Student, error) {
	return types.Student{}, errBoom
}

func TestListView(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	l := NewList(store, discard)

	require.NoError(t, l.Load(ctx))
	assert.False(t, l.Loading())
	assert.False(t, l.Empty())
	require.Len(t, l.Rows(), 3)
	assert.Nil(t, l.Banner())

	t.Run("declined delete does nothing", func(t *testing.T) {
		var asked string
		l.ConfirmDelete = func(st types.Student) bool {
			asked = DeletePrompt(st)
			return false
		}
		done, err := l.Delete(ctx, 2)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, "Delete Noah Williams? This cannot be undone.", asked)
		assert.Len(t, l.Rows(), 3)
	})

	t.Run("confirmed delete", func(t *testing.T) {
		l.ConfirmDelete = func(types.Student) bool { return true }
		done, err := l.Delete(ctx, 2)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, banner.Success("Student deleted."), l.Banner())

		rows := l.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, int64(1), rows[0].ID)
		assert.Equal(t, int64(3), rows[1].ID)
	})

	t.Run("delete of missing id", func(t *testing.T) {
		_, err := l.Delete(ctx, 2)
		assert.ErrorIs(t, err, student.ErrNotFound)
		assert.Equal(t, banner.Danger("Failed to delete student."), l.Banner())

		l.DismissBanner()
		assert.Nil(t, l.Banner())
	})

	t.Run("refresh picks up new records", func(t *testing.T) {
		_, err := store.Add(ctx, jon())
		require.NoError(t, err)

		require.NoError(t, l.Refresh(ctx))
		rows := l.Rows()
		require.Len(t, rows, 3)
		assert.Equal(t, "Jon Snow", rows[0].Name)
	})
}

func TestListNotEmptyBeforeFirstLoad(t *testing.T) {
	l := NewList(newStore(), discard)
	assert.False(t, l.Empty())

	require.NoError(t, l.Load(context.Background()))
	assert.False(t, l.Empty())
}

func TestListViewFailures(t *testing.T) {
	ctx := context.Background()
	l := NewList(failingStore{}, discard)

	assert.ErrorIs(t, l.Load(ctx), errBoom)
	assert.Equal(t, banner.Danger("Failed to load students."), l.Banner())
	assert.True(t, l.Empty())

	_, err := l.Delete(ctx, 1)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, banner.Danger("Failed to delete student."), l.Banner())
}

func TestFormAdd(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	navigated := 0
	f := NewForm(store, NavigatorFunc(func() { navigated++ }), discard)

	require.NoError(t, f.Open(ctx, nil))
	assert.False(t, f.EditMode())
	assert.Equal(t, "Add Student", f.Title())
	assert.Equal(t, types.ResultPass, f.Fields().Result)

	fields := jon()
	fields.Name = "  Jon Snow "
	require.NoError(t, f.Submit(ctx, fields))
	assert.Equal(t, 1, navigated)
	assert.Equal(t, banner.Success("Student added."), f.Banner())

	got, err := store.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, jon(), got.Fields)
}

func TestFormEdit(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	navigated := 0
	f := NewForm(store, NavigatorFunc(func() { navigated++ }), discard)

	id := int64(3)
	require.NoError(t, f.Open(ctx, &id))
	assert.True(t, f.EditMode())
	assert.Equal(t, "Edit Student", f.Title())
	assert.Equal(t, "Sophia Brown", f.Fields().Name)

	fields := f.Fields()
	fields.Marks = 55
	fields.Result = types.ResultPass
	require.NoError(t, f.Submit(ctx, fields))
	assert.Equal(t, 1, navigated)
	assert.Equal(t, banner.Success("Student updated."), f.Banner())

	got, err := store.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, float64(55), got.Marks)

	rows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFormOpenMissing(t *testing.T) {
	f := NewForm(newStore(), nil, discard)

	id := int64(99)
	err := f.Open(context.Background(), &id)
	assert.ErrorIs(t, err, student.ErrNotFound)
	assert.Equal(t, banner.Danger("Student not found."), f.Banner())
	assert.False(t, f.Loading())
}

func TestFormValidation(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	navigated := false
	f := NewForm(store, NavigatorFunc(func() { navigated = true }), discard)
	require.NoError(t, f.Open(ctx, nil))

	tests := map[string]struct {
		mutate func(*types.Fields)
		want   string
	}{
		"blank name":     {func(v *types.Fields) { v.Name = "   " }, "field Name is required"},
		"bad email":      {func(v *types.Fields) { v.Email = "jon" }, "field Email must be a valid email address"},
		"blank course":   {func(v *types.Fields) { v.Course = "" }, "field Course is required"},
		"negative marks": {func(v *types.Fields) { v.Marks = -1 }, "field Marks must be 0 or more"},
		"infinite marks": {func(v *types.Fields) { v.Marks = math.Inf(1) }, "field Marks must be a finite number"},
		"NaN marks":      {func(v *types.Fields) { v.Marks = math.NaN() }, "field Marks must be a finite number"},
		"missing result": {func(v *types.Fields) { v.Result = "" }, "field Result is required"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fields := jon()
			tc.mutate(&fields)

			err := f.Submit(ctx, fields)
			assert.ErrorIs(t, err, ErrInvalid)
			require.NotNil(t, f.Banner())
			assert.Equal(t, banner.KindDanger, f.Banner().Kind)
			assert.Equal(t, tc.want, f.Banner().Message)
		})
	}

	assert.False(t, navigated)
	rows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "invalid submissions never reach the store")
}

func TestFormNonFiniteMarksKeepBackendWritable(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := student.New(kv, student.Options{Logger: discard})
	f := NewForm(store, nil, discard)

	fields := jon()
	fields.Marks = math.Inf(1)
	assert.ErrorIs(t, f.Submit(ctx, fields), ErrInvalid)

	require.NoError(t, f.Submit(ctx, jon()))

	raw, err := kv.Get(student.DefaultKey)
	require.NoError(t, err)
	var persisted []types.Student
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 4)
	assert.Equal(t, jon(), persisted[0].Fields)
}

func TestFormSaveFailure(t *testing.T) {
	f := NewForm(failingStore{}, nil, discard)

	err := f.Submit(context.Background(), jon())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, banner.Danger("Failed to save student."), f.Banner())
	assert.False(t, f.Saving())
}

func TestFormRejectsWhileBusy(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{Store: newStore(), release: make(chan struct{})}
	f := NewForm(store, nil, discard)

	t.Run("saving", func(t *testing.T) {
		done := make(chan error, 1)
		go func() { done <- f.Submit(ctx, jon()) }()

		require.Eventually(t, f.Saving, time.Second, time.Millisecond)
		assert.ErrorIs(t, f.Submit(ctx, jon()), ErrBusy)
		assert.ErrorIs(t, f.Open(ctx, nil), ErrBusy)

		close(store.release)
		require.NoError(t, <-done)
		assert.False(t, f.Saving())
	})

	t.Run("loading", func(t *testing.T) {
		store.release = make(chan struct{})
		done := make(chan error, 1)
		id := int64(1)
		go func() { done <- f.Open(ctx, &id) }()

		require.Eventually(t, f.Loading, time.Second, time.Millisecond)
		assert.ErrorIs(t, f.Submit(ctx, jon()), ErrBusy)

		close(store.release)
		require.NoError(t, <-done)
		assert.Equal(t, "Ava Johnson", f.Fields().Name)
	})
}
