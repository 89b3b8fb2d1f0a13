package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/banner"
)

var (
	// ErrBusy is returned when Open or Submit is called while a previous
	// load or save has not finished.
	ErrBusy = errors.New("view: a save or load is already in flight")

	// ErrInvalid wraps the validator errors of a rejected submission.
	ErrInvalid = errors.New("view: invalid student")
)

// Form backs the add/edit screen. With an id it edits that record,
// without one it adds a new record.
type Form struct {
	store    Store
	nav      Navigator
	log      *slog.Logger
	validate *validator.Validate

	// set while a load or save is in flight
	busy atomic.Bool

	mu      sync.Mutex
	id      *int64
	fields  types.Fields
	loading bool
	saving  bool
	banner  *banner.Banner
}

// NewForm returns an add form over store. nav may be nil.
func NewForm(store Store, nav Navigator, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{
		store:    store,
		nav:      nav,
		log:      log.With(slog.String("view", "form")),
		validate: types.NewValidator(),
		fields:   blankFields(),
	}
}

func blankFields() types.Fields {
	return types.Fields{Result: types.ResultPass}
}

// Open prepares the form. A nil id starts an empty add form; otherwise
// the record is fetched and its fields pre-filled.
func (f *Form) Open(ctx context.Context, id *int64) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	f.id = nil
	if id != nil {
		v := *id
		f.id = &v
	}
	f.fields = blankFields()
	f.banner = nil
	f.loading = id != nil
	f.mu.Unlock()

	if id == nil {
		return nil
	}

	st, err := f.store.GetByID(ctx, *id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	if err != nil {
		f.log.Error("error loading student", slog.Int64("id", *id), slog.String("error", err.Error()))
		f.banner = banner.Danger("Student not found.")
		return err
	}

	f.fields = st.Fields
	return nil
}

// Submit validates fields and saves them through the store. On success it
// navigates back to the list.
func (f *Form) Submit(ctx context.Context, fields types.Fields) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.busy.Store(false)

	fields = normalize(fields)

	f.mu.Lock()
	f.banner = nil
	f.fields = fields
	var id *int64
	if f.id != nil {
		v := *f.id
		id = &v
	}

	if err := f.validate.Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			f.banner = banner.Validation(verrs)
		} else {
			f.banner = banner.Danger("Failed to save student.")
		}
		f.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	f.saving = true
	f.mu.Unlock()

	var (
		saved types.Student
		err   error
		msg   string
	)
	if id == nil {
		saved, err = f.store.Add(ctx, fields)
		msg = "Student added."
	} else {
		saved, err = f.store.Update(ctx, *id, fields)
		msg = "Student updated."
	}

	f.mu.Lock()
	f.saving = false
	if err != nil {
		f.banner = banner.Danger("Failed to save student.")
		f.mu.Unlock()
		f.log.Error("error saving student", slog.String("error", err.Error()))
		return err
	}
	f.banner = banner.Success(msg)
	f.mu.Unlock()

	f.log.Info("student saved", slog.Int64("id", saved.ID))
	if f.nav != nil {
		f.nav.ToList()
	}
	return nil
}

// normalize trims the text fields the way they are stored.
func normalize(fields types.Fields) types.Fields {
	fields.Name = strings.TrimSpace(fields.Name)
	fields.Email = strings.TrimSpace(fields.Email)
	fields.Course = strings.TrimSpace(fields.Course)
	return fields
}

// EditMode reports whether the form was opened for an existing record.
func (f *Form) EditMode() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id != nil
}

// Title is the heading shown above the form.
func (f *Form) Title() string {
	if f.EditMode() {
		return "Edit Student"
	}
	return "Add Student"
}

// Fields returns the values currently in the form.
func (f *Form) Fields() types.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Loading reports whether Open is still fetching the record.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Saving reports whether a submission is waiting on the store.
func (f *Form) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Banner returns the current banner, or nil.
func (f *Form) Banner() *banner.Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

// DismissBanner hides the current banner.
func (f *Form) DismissBanner() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banner = nil
}
