// Package memory is a process-local storage.KV. Values are lost when the
// process exits.
package memory

import (
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// Memory is a map-backed storage.KV, safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	Db map[string]string
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{
		Db: make(map[string]string),
	}
}

// Get returns the value under key, or storage.ErrNoValue.
func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.Db[key]
	if !ok {
		return "", storage.ErrNoValue
	}

	return v, nil
}

// Set implements storage.KV.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Db[key] = value
	return nil
}
