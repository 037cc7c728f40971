// Package testsupport holds fakes and fixture helpers shared by package tests.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/composite"
)

// LoadDocument reads a YAML template fixture. Testing helpers fail the test
// on error to keep call sites concise.
func LoadDocument(t testing.TB, path string) composite.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (composite.Document, error) {
	if path == "" {
		return composite.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return composite.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	var doc composite.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return composite.Document{}, fmt.Errorf("testsupport: decode document: %w", err)
	}
	return doc, nil
}
