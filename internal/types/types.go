// Package types is the student record model: the persisted JSON layout
// and the validation rules. The store, the views and the storage
// backends all import it, and it imports none of them.
package types

import (
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Result is the outcome recorded for a student. Only the two values
// below are valid.
type Result string

const (
	ResultPass Result = "Pass"
	ResultFail Result = "Fail"
)

// Fields are the editable attributes of a student: everything except the
// id, which only the store assigns.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//     These names are the persisted layout of the storage slot, so they
//     must not change.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
//     "finite" is registered by NewValidator.
type Fields struct {
	Name   string  `json:"name"   validate:"required"`
	Email  string  `json:"email"  validate:"required,email"`
	Course string  `json:"course" validate:"required"`
	Marks  float64 `json:"marks"  validate:"finite,gte=0"`
	Result Result  `json:"result" validate:"required,oneof=Pass Fail"`
}

// Student represents a stored student record.
//
// Fields is embedded, so its JSON keys are flattened next to studentId:
//
//	{"studentId":1,"name":"...","email":"...","course":"...","marks":88,"result":"Pass"}
type Student struct {
	ID int64 `json:"studentId" validate:"gte=1"`
	Fields
}

// NewValidator returns a validator that knows every tag used on Fields
// and Student. JSON cannot encode NaN or ±Inf, so marks must be finite.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag name or nil func.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			x := f.Float()
			return !math.IsNaN(x) && !math.IsInf(x, 0)
		default:
			return true
		}
	})
	return v
}
