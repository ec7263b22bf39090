package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateString(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateString()

	if len(id) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id))
	}
}

func TestNewTemplateID(t *testing.T) {
	id := NewTemplateID()

	if !strings.HasPrefix(id, TemplatePrefix+"_") {
		t.Errorf("Template ID should start with '%s_', got: %s", TemplatePrefix, id)
	}

	parts := strings.Split(id, "_")
	if len(parts) != 2 || len(parts[1]) != 26 {
		t.Errorf("Template ID should have format 'tmpl_ulid', got: %s", id)
	}

	if IsPredefined(id) {
		t.Errorf("Generated ID must never fall in the reserved namespace: %s", id)
	}
}

func TestIsPredefined(t *testing.T) {
	if !IsPredefined("sys-retrospective") {
		t.Error("sys-* IDs belong to the predefined namespace")
	}
	if IsPredefined("tmpl_01HZXW4N8PQRS6T7V8W9X0Y1Z2") {
		t.Error("tmpl_* IDs are not predefined")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 50

	var wg sync.WaitGroup
	idChan := make(chan string, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- gen.GenerateString()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[string]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("Duplicate ID found in concurrent generation: %s", id)
		}
		seen[id] = true
	}
}

func TestDefaultGenerator(t *testing.T) {
	gen1 := Default()
	gen2 := Default()

	if gen1 != gen2 {
		t.Error("Default() should return the same instance")
	}
}
