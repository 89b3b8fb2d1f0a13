// Package banner provides the user-visible status messages shown by the
// views after each operation.
//
// Every view reports outcomes the same way, so the shapes and the
// validation wording live here instead of in each view.
package banner

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind selects how a banner is styled.
type Kind string

// Use these instead of raw string literals so a typo is caught by the
// compiler.
const (
	KindSuccess Kind = "success"
	KindDanger  Kind = "danger"
)

// Banner is a dismissible message. Views hold at most one at a time; a nil
// *Banner means nothing is shown.
type Banner struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Success returns a success banner with msg.
func Success(msg string) *Banner {
	return &Banner{Kind: KindSuccess, Message: msg}
}

// Danger returns an error banner with msg. Callers pass a generic message;
// the underlying error kind is not shown to the user.
func Danger(msg string) *Banner {
	return &Banner{Kind: KindDanger, Message: msg}
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation converts the field errors reported by go-playground/validator
// into a single danger banner.
//
// Example output:
//
//	{ "kind": "danger", "message": "field Name is required, field Marks must be 0 or more" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Validation(errs validator.ValidationErrors) *Banner {
	var msgs []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "finite":
			msgs = append(msgs, fmt.Sprintf("field %s must be a finite number", e.Field()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be %s or more", e.Field(), e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param()))
		// Catch-all for any other validation tag
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Danger(strings.Join(msgs, ", "))
}
