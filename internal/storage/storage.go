// Package storage provides the persistent key-value facade backing the
// template engine.
//
// Two string-keyed scopes exist: a global scope shared by every
// identity, and a user scope private to the acting identity. Values
// are opaque strings; callers own JSON (de)serialization via the Codec
// helpers. The facade offers no transactions and no concurrency
// tokens: overlapping read-modify-write sequences race and the later
// write wins. That limitation is accepted by the design.
package storage

import "fmt"

// Scope selects one of the two property stores.
type Scope string

const (
	// ScopeGlobal is shared across all identities.
	ScopeGlobal Scope = "global"
	// ScopeUser belongs to the acting identity only.
	ScopeUser Scope = "user"
)

// Backend persists buckets of string properties. Implementations must
// be safe for concurrent use.
type Backend interface {
	// Read returns the value for key in bucket, or false when absent.
	Read(bucket, key string) (string, bool)
	// Write stores the value for key in bucket.
	Write(bucket, key, value string) error
}

const globalBucket = "global"

func userBucket(identityID string) string {
	return fmt.Sprintf("user:%s", identityID)
}

// Store binds a backend to one acting identity, resolving the user
// scope to that identity's bucket.
type Store struct {
	backend    Backend
	identityID string
}

// Bind creates a facade bound to the given identity.
func Bind(backend Backend, identityID string) *Store {
	return &Store{backend: backend, identityID: identityID}
}

// Get reads a property. Absent keys return ("", false).
func (s *Store) Get(scope Scope, key string) (string, bool) {
	return s.backend.Read(s.bucket(scope), key)
}

// Set writes a property.
func (s *Store) Set(scope Scope, key, value string) error {
	return s.backend.Write(s.bucket(scope), key, value)
}

func (s *Store) bucket(scope Scope) string {
	if scope == ScopeGlobal {
		return globalBucket
	}
	return userBucket(s.identityID)
}
