package storage

import "sync"

// Memory is an in-process backend used by tests and development mode.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]string)}
}

// Read returns the value for key in bucket.
func (m *Memory) Read(bucket, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	props, ok := m.buckets[bucket]
	if !ok {
		return "", false
	}
	val, ok := props[key]
	return val, ok
}

// Write stores the value for key in bucket.
func (m *Memory) Write(bucket, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	props, ok := m.buckets[bucket]
	if !ok {
		props = make(map[string]string)
		m.buckets[bucket] = props
	}
	props[key] = value
	return nil
}
