// Package storage defines the KV interface — the contract that any
// persistent key-value backend must satisfy to hold the student
// collection.
//
// The store service only ever touches one key, the slot holding the
// serialized collection. Backends do not know what the value means; they
// move strings in and out.
package storage

import "errors"

var (
	// ErrNoValue is returned by Get when the key holds nothing.
	ErrNoValue = errors.New("storage: no value for key")

	// ErrUnavailable is returned when the backend cannot be used at all:
	// the file is locked, access is denied, or the backend was disabled.
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// KV is the persistent slot contract.
// Any concrete type that implements both methods satisfies it
// implicitly.
type KV interface {
	// Get returns the value stored under key, or ErrNoValue.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// Unavailable is a KV whose every call fails with ErrUnavailable.
// It stands in for a blocked or denied backend.
type Unavailable struct{}

// Get always fails with ErrUnavailable.
func (Unavailable) Get(string) (string, error) { return "", ErrUnavailable }

// Set always fails with ErrUnavailable.
func (Unavailable) Set(string, string) error { return ErrUnavailable }
