// Package id provides centralized ID generation for the backend.
//
// Template IDs are prefixed ULIDs (tmpl_*): lexicographically sortable,
// collision-free, and easy to tell apart from the reserved sys-*
// namespace used by predefined seed templates.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TemplatePrefix marks generated template IDs.
const TemplatePrefix = "tmpl"

// PredefinedPrefix marks the reserved namespace of built-in seed
// templates. IDs in this namespace are never generated.
const PredefinedPrefix = "sys-"

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source. Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewTemplateID generates a new template ID.
func NewTemplateID() string {
	return Default().GenerateWithPrefix(TemplatePrefix)
}

// IsPredefined reports whether an ID belongs to the reserved
// predefined-template namespace.
func IsPredefined(id string) bool {
	return strings.HasPrefix(id, PredefinedPrefix)
}
