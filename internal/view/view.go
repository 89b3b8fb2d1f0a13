// Package view contains the controllers behind the two screens of the
// records manager: the student list and the add/edit form.
//
// They hold screen state (rows, form fields, the current banner, busy
// flags) and talk to the store through the Store interface. Rendering is
// left to whoever embeds them.
package view

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Store is the subset of *student.Service the views depend on.
type Store interface {
	List(ctx context.Context) ([]types.Student, error)
	GetByID(ctx context.Context, id int64) (types.Student, error)
	Add(ctx context.Context, fields types.Fields) (types.Student, error)
	Update(ctx context.Context, id int64, fields types.Fields) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// Navigator moves the user between screens.
type Navigator interface {
	ToList()
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func()

// ToList calls f.
func (f NavigatorFunc) ToList() { f() }
