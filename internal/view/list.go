package view

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/banner"
)

// List backs the student list screen.
type List struct {
	store Store
	log   *slog.Logger

	// ConfirmDelete asks the user to confirm removing st. Nil means every
	// delete is treated as confirmed.
	ConfirmDelete func(st types.Student) bool

	mu      sync.Mutex
	rows    []types.Student
	loading bool
	loaded  bool // a Load has finished, successfully or not
	banner  *banner.Banner
}

// NewList returns a list over store. Nothing is fetched until Load.
func NewList(store Store, log *slog.Logger) *List {
	if log == nil {
		log = slog.Default()
	}
	return &List{
		store: store,
		log:   log.With(slog.String("view", "list")),
	}
}

// Load fetches the collection and replaces the rows. It is called when the
// screen is first shown.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.banner = nil
	l.mu.Unlock()

	students, err := l.store.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.loaded = true

	if err != nil {
		l.log.Error("error loading students", slog.String("error", err.Error()))
		l.banner = banner.Danger("Failed to load students.")
		return err
	}

	l.rows = students
	return nil
}

// Refresh repeats Load on user request.
func (l *List) Refresh(ctx context.Context) error {
	return l.Load(ctx)
}

// DeletePrompt is the confirmation question shown before deleting st.
func DeletePrompt(st types.Student) string {
	return fmt.Sprintf("Delete %s? This cannot be undone.", st.Name)
}

// Delete removes the row with the given id after the user confirms. It
// reports false when the user declined.
func (l *List) Delete(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	i := slices.IndexFunc(l.rows, func(st types.Student) bool { return st.ID == id })
	var row types.Student
	if i >= 0 {
		row = l.rows[i]
	} else {
		row = types.Student{ID: id}
	}
	l.mu.Unlock()

	if l.ConfirmDelete != nil && !l.ConfirmDelete(row) {
		return false, nil
	}

	l.mu.Lock()
	l.banner = nil
	l.mu.Unlock()

	err := l.store.Delete(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.log.Error("error deleting student", slog.Int64("id", id), slog.String("error", err.Error()))
		l.banner = banner.Danger("Failed to delete student.")
		return true, err
	}

	l.rows = slices.DeleteFunc(l.rows, func(st types.Student) bool { return st.ID == id })
	l.banner = banner.Success("Student deleted.")
	return true, nil
}

// Rows returns a copy of the rows currently shown.
func (l *List) Rows() []types.Student {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.rows)
}

// Loading reports whether a Load is in flight.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Empty reports whether a finished load produced no rows.
func (l *List) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded && !l.loading && len(l.rows) == 0
}

// Banner returns the current banner, or nil.
func (l *List) Banner() *banner.Banner {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.banner
}

// DismissBanner hides the current banner.
func (l *List) DismissBanner() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banner = nil
}
