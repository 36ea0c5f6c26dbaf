package managed_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	managed "github.com/goliatone/go-managed"
	"github.com/goliatone/go-managed/pkg/schema"
	"github.com/goliatone/go-managed/pkg/store"
	"github.com/goliatone/go-managed/pkg/testsupport"
)

func bundledRegistry(t *testing.T) schema.TypeSource {
	t.Helper()
	registry, err := managed.LoadDeclarations(managed.DeclarationsFS())
	if err != nil {
		t.Fatalf("load bundled declarations: %v", err)
	}
	return registry
}

func TestSummarize_PersonGolden(t *testing.T) {
	s := managed.NewStore(store.WithTypeSource(bundledRegistry(t)))
	person, err := s.Schema(testsupport.Context(), "Person")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	testsupport.AssertJSONGolden(t, filepath.Join("testdata", "person.summary.json"), managed.Summarize(person))
}

func TestInstantiate_BundledPerson(t *testing.T) {
	person, err := managed.Instantiate(context.Background(), bundledRegistry(t), "Person")
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if err := person.Set("name", "Ada"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := person.Set("age", "old"); err == nil {
		t.Fatalf("expected type mismatch for age")
	}
	if err := person.Set("address", nil); err == nil {
		t.Fatalf("expected read-only address")
	}

	name, _ := person.Get("name")
	if got, _ := name.Value(); got != "Ada" {
		t.Fatalf("expected Ada, got %v", got)
	}

	address, _ := person.Get("address")
	value, ok := address.Value()
	if !ok {
		t.Fatalf("expected address instance")
	}
	nested, ok := value.(*managed.Instance)
	if !ok {
		t.Fatalf("expected nested instance, got %T", value)
	}
	if diff := cmp.Diff([]string{"street", "city", "kind"}, nested.Schema().PropertyNames()); diff != "" {
		t.Fatalf("address properties mismatch (-want +got):\n%s", diff)
	}
	if got := nested.DisplayName(); got != "Person.address" {
		t.Fatalf("unexpected nested display name %q", got)
	}
}

func TestInstantiate_UnknownType(t *testing.T) {
	_, err := managed.Instantiate(context.Background(), bundledRegistry(t), "Ghost")
	if !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}
