package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-managed/pkg/schema"
	"github.com/goliatone/go-managed/pkg/typedesc"
)

// PeopleDeclarations returns a small managed hierarchy shared by tests:
// Named declares a required name, Person refines it and owns a read-only
// Address.
func PeopleDeclarations() []typedesc.Declaration {
	return []typedesc.Declaration{
		{
			Name: "Named",
			Properties: []typedesc.PropertyDeclaration{
				{Name: "name", Type: "string", Annotations: []schema.Annotation{{Kind: "required"}}},
			},
		},
		{
			Name:       "Person",
			Managed:    true,
			Supertypes: []string{"Named"},
			Properties: []typedesc.PropertyDeclaration{
				{Name: "name", Type: "string", Annotations: []schema.Annotation{
					{Kind: "description", Params: map[string]string{"text": "full name"}},
				}},
				{Name: "age", Type: "int", Annotations: []schema.Annotation{
					{Kind: "min", Params: map[string]string{"value": "0"}},
				}},
				{Name: "address", Type: "Address", ReadOnly: true},
			},
		},
		{
			Name:    "Address",
			Managed: true,
			Properties: []typedesc.PropertyDeclaration{
				{Name: "city", Type: "string"},
			},
		},
	}
}

// PeopleRegistry registers PeopleDeclarations.
func PeopleRegistry(t *testing.T) *typedesc.Registry {
	t.Helper()

	registry, err := typedesc.NewRegistry(PeopleDeclarations()...)
	if err != nil {
		t.Fatalf("people registry: %v", err)
	}
	return registry
}

// LoadRegistry reads a JSON or YAML declaration fixture.
func LoadRegistry(t *testing.T, path string) *typedesc.Registry {
	t.Helper()

	registry, err := LoadRegistryFromPath(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return registry
}

// LoadRegistryFromPath returns a registry without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadRegistryFromPath(path string) (*typedesc.Registry, error) {
	if path == "" {
		return nil, errors.New("testsupport: declaration path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read declarations: %w", err)
	}
	return typedesc.Parse(data, path)
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true if the golden was written (test should exit early).
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// AssertJSONGolden compares the JSON encoding of value with the golden at
// path, ignoring formatting. With UPDATE_GOLDENS set the golden is rewritten
// instead.
func AssertJSONGolden(t *testing.T, path string, value any) {
	t.Helper()

	if WriteGolden(t, path, value) {
		return
	}
	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var got any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
