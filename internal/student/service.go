// Package student is the single source of truth for the student
// collection.
//
// The Service keeps the collection in memory and mirrors every change to
// one slot of a storage.KV backend. The backend is best-effort: if it is
// unavailable or its contents are unreadable the service carries on with
// the in-memory copy (seeding it when there is nothing usable), and write
// failures are logged, never returned.
//
// Every operation waits out a fixed simulated latency before it returns,
// so views built on top of it behave as if they were talking to a remote
// API.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultKey is the slot the collection is stored under when Options.Key
// is empty.
const DefaultKey = "sms.students.v1"

var (
	// ErrNotFound is returned when an operation references an id that is
	// not in the collection. It is the only failure operations report,
	// apart from context errors.
	ErrNotFound = errors.New("student not found")

	// ErrStorageCorrupt marks a stored value that is not a well-formed
	// collection. It is logged and recovered by reseeding.
	ErrStorageCorrupt = errors.New("stored collection is corrupt")
)

// Options configure a Service. The zero value is usable.
type Options struct {
	Key     string
	Latency time.Duration
	Logger  *slog.Logger
}

// Service owns the student collection.
//
// mu serialises the lazy load and every read-compute-write sequence,
// including the write to the backend, so id assignment cannot race.
// The simulated latency is waited out after mu is released.
type Service struct {
	kv       storage.KV
	key      string
	latency  time.Duration
	log      *slog.Logger
	validate *validator.Validate

	mu     sync.Mutex
	loaded bool
	cache  []types.Student
	// highest id seen this session; ids above it are never handed out twice
	highWater int64
}

// New returns a Service over kv. Nothing is read from kv until the first
// operation.
func New(kv storage.KV, opts Options) *Service {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		kv:       kv,
		key:      opts.Key,
		latency:  opts.Latency,
		log:      opts.Logger.With(slog.String("component", "student"), slog.String("key", opts.Key)),
		validate: types.NewValidator(),
	}
}

// List returns the whole collection, most recently added first.
func (s *Service) List(ctx context.Context) ([]types.Student, error) {
	s.mu.Lock()
	students := slices.Clone(s.load())
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return students, nil
}

// GetByID returns the record with the given id.
func (s *Service) GetByID(ctx context.Context, id int64) (types.Student, error) {
	s.mu.Lock()
	students := s.load()
	i := indexOf(students, id)
	var found types.Student
	if i >= 0 {
		found = students[i]
	}
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return types.Student{}, err
	}
	if i < 0 {
		return types.Student{}, notFound(id)
	}
	return found, nil
}

// Add assigns the next id to fields, puts the new record at the front of
// the collection and persists it.
func (s *Service) Add(ctx context.Context, fields types.Fields) (types.Student, error) {
	s.mu.Lock()
	students := s.load()

	s.highWater = max(s.highWater, maxID(students)) + 1
	created := types.Student{ID: s.highWater, Fields: fields}

	next := make([]types.Student, 0, len(students)+1)
	next = append(next, created)
	next = append(next, students...)
	s.commit(next)
	s.mu.Unlock()

	s.log.Info("student added", slog.Int64("id", created.ID))

	if err := s.wait(ctx); err != nil {
		return types.Student{}, err
	}
	return created, nil
}

// Update replaces the fields of the record with the given id, keeping
// its id and its position in the collection.
func (s *Service) Update(ctx context.Context, id int64, fields types.Fields) (types.Student, error) {
	s.mu.Lock()
	students := s.load()
	i := indexOf(students, id)

	var updated types.Student
	if i >= 0 {
		updated = types.Student{ID: id, Fields: fields}
		next := slices.Clone(students)
		next[i] = updated
		s.commit(next)
	}
	s.mu.Unlock()

	if i >= 0 {
		s.log.Info("student updated", slog.Int64("id", id))
	}

	if err := s.wait(ctx); err != nil {
		return types.Student{}, err
	}
	if i < 0 {
		return types.Student{}, notFound(id)
	}
	return updated, nil
}

// Delete removes the record with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	students := s.load()
	i := indexOf(students, id)
	if i >= 0 {
		next := slices.Delete(slices.Clone(students), i, i+1)
		s.commit(next)
	}
	s.mu.Unlock()

	if i >= 0 {
		s.log.Info("student deleted", slog.Int64("id", id))
	}

	if err := s.wait(ctx); err != nil {
		return err
	}
	if i < 0 {
		return notFound(id)
	}
	return nil
}

// load returns the cached collection, reading it from the backend the
// first time. Callers must hold mu.
func (s *Service) load() []types.Student {
	if s.loaded {
		return s.cache
	}
	s.loaded = true

	raw, err := s.kv.Get(s.key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNoValue):
		s.log.Debug("no stored collection")
	default:
		s.log.Warn("storage unavailable, continuing in memory", slog.String("error", err.Error()))
	}

	if raw != "" {
		students, err := s.decode(raw)
		if err == nil {
			s.cache = students
			s.highWater = maxID(students)
			s.log.Debug("collection loaded", slog.Int("count", len(students)))
			return s.cache
		}
		s.log.Warn("reseeding", slog.String("error", err.Error()))
	}

	seeded := seed()
	s.highWater = maxID(seeded)
	s.commit(seeded)
	s.log.Info("collection seeded", slog.Int("count", len(seeded)))
	return s.cache
}

// decode parses a stored collection. Anything other than a JSON array of
// valid records with distinct ids is ErrStorageCorrupt.
func (s *Service) decode(raw string) ([]types.Student, error) {
	var students []types.Student
	if err := json.Unmarshal([]byte(raw), &students); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
	}
	if students == nil {
		return nil, fmt.Errorf("%w: not an array", ErrStorageCorrupt)
	}

	seen := make(map[int64]struct{}, len(students))
	for i, st := range students {
		if err := s.validate.Struct(st); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrStorageCorrupt, i, err)
		}
		if _, dup := seen[st.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrStorageCorrupt, st.ID)
		}
		seen[st.ID] = struct{}{}
	}

	return students, nil
}

// commit makes students the current collection and tries to persist it.
// A persistence failure leaves the in-memory state in place.
func (s *Service) commit(students []types.Student) {
	s.cache = students
	if err := s.persist(students); err != nil {
		s.log.Warn("persist failed, keeping in-memory copy", slog.String("error", err.Error()))
	}
}

func (s *Service) persist(students []types.Student) error {
	buf, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("persist: marshal: %w", err)
	}
	if err := s.kv.Set(s.key, string(buf)); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// wait blocks for the simulated latency or until ctx is done.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.latency)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func indexOf(students []types.Student, id int64) int {
	return slices.IndexFunc(students, func(st types.Student) bool { return st.ID == id })
}

func maxID(students []types.Student) int64 {
	var m int64
	for _, st := range students {
		m = max(m, st.ID)
	}
	return m
}

func notFound(id int64) error {
	return fmt.Errorf("student %d: %w", id, ErrNotFound)
}
