package extract_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-managed/pkg/extract"
	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/schema"
	"github.com/goliatone/go-managed/pkg/testsupport"
	"github.com/goliatone/go-managed/pkg/typedesc"
)

func note(text string) schema.Annotation {
	return schema.Annotation{Kind: "description", Params: map[string]string{"text": text}}
}

func mustRegistry(t *testing.T, decls ...typedesc.Declaration) *typedesc.Registry {
	t.Helper()
	registry, err := typedesc.NewRegistry(decls...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func extractType(t *testing.T, e *extract.Extractor, registry *typedesc.Registry, name string) (*extract.Extraction, error) {
	t.Helper()
	desc, err := registry.Describe(context.Background(), name)
	if err != nil {
		t.Fatalf("describe %s: %v", name, err)
	}
	return e.Extract(context.Background(), desc, registry, nil)
}

func TestExtract_DerivedDeclarationWins(t *testing.T) {
	registry := mustRegistry(t,
		typedesc.Declaration{
			Name: "Named",
			Properties: []typedesc.PropertyDeclaration{
				{Name: "name", Type: "string", Concrete: true, Annotations: []schema.Annotation{note("base"), {Kind: "required"}}},
			},
		},
		typedesc.Declaration{
			Name:       "Person",
			Managed:    true,
			Supertypes: []string{"Named"},
			Properties: []typedesc.PropertyDeclaration{
				{Name: "name", Type: "string", Annotations: []schema.Annotation{note("derived")}},
				{Name: "age", Type: "int"},
			},
		},
	)

	extraction, err := extractType(t, extract.New(), registry, "Person")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if extraction.Strategy != "managed" {
		t.Fatalf("expected managed strategy, got %q", extraction.Strategy)
	}
	if extraction.Initializer == nil {
		t.Fatalf("expected initializer for managed type")
	}

	s := extraction.Schema
	if diff := cmp.Diff([]string{"name", "age"}, s.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	name, _ := s.Property("name")
	if !name.Getter.Abstract {
		t.Fatalf("expected derived abstract getter to win")
	}
	if !name.DeclaredInManagedType() {
		t.Fatalf("expected name to be declared in a managed type")
	}
	if diff := cmp.Diff([]string{"Person", "Named"}, name.Getter.DeclaringTypes()); diff != "" {
		t.Fatalf("declaring types mismatch (-want +got):\n%s", diff)
	}
	description, _ := name.Annotations.Get("description")
	if got := description.Params["text"]; got != "derived" {
		t.Fatalf("expected derived description, got %q", got)
	}
	if !name.Annotations.Has("required") {
		t.Fatalf("expected inherited required annotation")
	}
}

func TestExtract_IsIdempotent(t *testing.T) {
	registry := testsupport.PeopleRegistry(t)
	e := extract.New()

	first, err := extractType(t, e, registry, "Person")
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := extractType(t, e, registry, "Person")
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}

	a, _ := first.Schema.MarshalJSON()
	b, _ := second.Schema.MarshalJSON()
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Fatalf("extractions differ (-first +second):\n%s", diff)
	}
}

func TestExtract_AmbiguousDeclaration(t *testing.T) {
	registry := mustRegistry(t,
		typedesc.Declaration{Name: "Left", Properties: []typedesc.PropertyDeclaration{{Name: "id", Type: "string"}}},
		typedesc.Declaration{Name: "Right", Properties: []typedesc.PropertyDeclaration{{Name: "id", Type: "string"}}},
		typedesc.Declaration{Name: "Both", Managed: true, Supertypes: []string{"Left", "Right"}},
	)

	_, err := extractType(t, extract.New(), registry, "Both")
	if !errors.Is(err, schema.ErrAmbiguousDeclaration) {
		t.Fatalf("expected ambiguous declaration, got %v", err)
	}
	var ambiguous *schema.AmbiguousDeclarationError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousDeclarationError, got %T", err)
	}
	if ambiguous.Property != "id" || len(ambiguous.Candidates) != 2 {
		t.Fatalf("unexpected ambiguity details: %+v", ambiguous)
	}
}

func TestExtract_ReordersAndWarns(t *testing.T) {
	registry := mustRegistry(t,
		typedesc.Declaration{Name: "Named"},
		typedesc.Declaration{Name: "Person", Managed: true, Supertypes: []string{"Named"}},
	)
	desc := schema.TypeDescription{
		Type:       schema.Type{Name: "Person", Managed: true},
		Supertypes: []string{"Named"},
		Accessors: []schema.Accessor{
			typedesc.Getter("Named", "name", "string", note("base")),
			typedesc.Getter("Person", "name", "string", note("derived")),
		},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	extraction, err := extract.New(extract.WithLogger(logger)).Extract(context.Background(), desc, registry, nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	name, _ := extraction.Schema.Property("name")
	if name.Getter.MostSpecific.Owner != "Person" {
		t.Fatalf("expected Person getter to be most specific, got %s", name.Getter.MostSpecific.Owner)
	}
	description, _ := name.Annotations.Get("description")
	if got := description.Params["text"]; got != "derived" {
		t.Fatalf("expected derived annotation to win, got %q", got)
	}
	if !strings.Contains(logs.String(), "most-specific first") {
		t.Fatalf("expected reorder warning, got %q", logs.String())
	}
}

func TestExtract_InvalidDeclarations(t *testing.T) {
	tests := []struct {
		name string
		decl typedesc.Declaration
		rule string
	}{
		{
			name: "setter without getter",
			decl: typedesc.Declaration{Name: "T", Accessors: []schema.Accessor{typedesc.Setter("T", "x", "string")}},
			rule: "a setter is declared without a getter",
		},
		{
			name: "type mismatch",
			decl: typedesc.Declaration{Name: "T", Accessors: []schema.Accessor{
				typedesc.Getter("T", "x", "string"),
				typedesc.Setter("T", "x", "int"),
			}},
			rule: "getter type string does not match setter type int",
		},
		{
			name: "abstract setter with concrete getter",
			decl: typedesc.Declaration{Name: "T", Accessors: []schema.Accessor{
				{Owner: "T", Property: "x", Role: schema.RoleGetter, ValueType: "string"},
				typedesc.Setter("T", "x", "string"),
			}},
			rule: "an abstract setter requires an abstract getter",
		},
		{
			name: "variant on numeric property",
			decl: typedesc.Declaration{Name: "T", Properties: []typedesc.PropertyDeclaration{
				{Name: "x", Type: "int", Annotations: []schema.Annotation{{Kind: "variant"}}},
			}},
			rule: "aspect variant",
		},
		{
			name: "inverted bounds",
			decl: typedesc.Declaration{Name: "T", Properties: []typedesc.PropertyDeclaration{
				{Name: "x", Type: "int", Annotations: []schema.Annotation{
					{Kind: "min", Params: map[string]string{"value": "10"}},
					{Kind: "max", Params: map[string]string{"value": "1"}},
				}},
			}},
			rule: "aspect constraints",
		},
		{
			name: "constraint without value",
			decl: typedesc.Declaration{Name: "T", Properties: []typedesc.PropertyDeclaration{
				{Name: "x", Type: "string", Annotations: []schema.Annotation{{Kind: "pattern"}}},
			}},
			rule: "pattern annotation requires a value parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mustRegistry(t, tt.decl)
			_, err := extractType(t, extract.New(), registry, "T")
			if !errors.Is(err, schema.ErrInvalidSchema) {
				t.Fatalf("expected invalid schema, got %v", err)
			}
			var invalid *schema.InvalidSchemaError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidSchemaError, got %T", err)
			}
			if invalid.Rule != tt.rule {
				t.Fatalf("expected rule %q, got %q", tt.rule, invalid.Rule)
			}
		})
	}
}

func TestExtract_ProbeFailsBeforeAnyInstance(t *testing.T) {
	registry := mustRegistry(t, typedesc.Declaration{
		Name:    "Greeter",
		Managed: true,
		Members: []typedesc.MemberDeclaration{{Name: "greet", Abstract: true}},
	})

	_, err := extractType(t, extract.New(), registry, "Greeter")
	if !errors.Is(err, schema.ErrInstantiation) {
		t.Fatalf("expected instantiation error, got %v", err)
	}
	if !errors.Is(err, instance.ErrUnimplementedMember) {
		t.Fatalf("expected unimplemented member cause, got %v", err)
	}

	factory := instance.NewProxyFactory(instance.WithImplementation("Greeter", "greet", func(*instance.Proxy, ...any) (any, error) {
		return "hi", nil
	}))
	if _, err := extractType(t, extract.New(extract.WithProxyFactory(factory)), registry, "Greeter"); err != nil {
		t.Fatalf("expected implemented member to pass probe, got %v", err)
	}
}

func TestExtract_UnmanagedTypesSkipProbe(t *testing.T) {
	registry := mustRegistry(t, typedesc.Declaration{
		Name:    "Clock",
		Members: []typedesc.MemberDeclaration{{Name: "now", Abstract: true}},
	})

	extraction, err := extractType(t, extract.New(), registry, "Clock")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if extraction.Strategy != "unmanaged" || extraction.Initializer != nil {
		t.Fatalf("unexpected unmanaged extraction: %+v", extraction)
	}
}

func TestExtract_Aspects(t *testing.T) {
	registry := mustRegistry(t, typedesc.Declaration{
		Name:    "Plan",
		Managed: true,
		Properties: []typedesc.PropertyDeclaration{
			{Name: "tier", Type: "string", Annotations: []schema.Annotation{{Kind: "variant"}, {Kind: "pattern", Params: map[string]string{"value": "^[a-z]+$"}}}},
			{Name: "seats", Type: "int", Annotations: []schema.Annotation{
				{Kind: "min", Params: map[string]string{"value": "1"}},
				{Kind: "max", Params: map[string]string{"value": "50"}},
			}},
		},
	})

	extraction, err := extractType(t, extract.New(), registry, "Plan")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	variant, ok := extraction.Schema.Aspect("variant")
	if !ok {
		t.Fatalf("expected variant aspect")
	}
	if diff := cmp.Diff([]string{"tier"}, variant.(extract.VariantAspect).Properties); diff != "" {
		t.Fatalf("variant mismatch (-want +got):\n%s", diff)
	}

	constraints, ok := extraction.Schema.Aspect("constraints")
	if !ok {
		t.Fatalf("expected constraints aspect")
	}
	want := []extract.Constraint{
		{Property: "seats", Kind: "min", Value: "1"},
		{Property: "seats", Kind: "max", Value: "50"},
	}
	if diff := cmp.Diff(want, constraints.(extract.ConstraintAspect).For("seats")); diff != "" {
		t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := extract.New().Extract(ctx, schema.TypeDescription{Type: schema.Type{Name: "T"}}, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveAccessor_WithoutHierarchy(t *testing.T) {
	single := []schema.Accessor{typedesc.Getter("Person", "name", "string", note("only"))}
	accessor, reordered, err := extract.ResolveAccessor(single, nil)
	if err != nil || reordered {
		t.Fatalf("resolve: reordered=%v err=%v", reordered, err)
	}
	if accessor.MostSpecific.Owner != "Person" || accessor.DeclaredInManagedType {
		t.Fatalf("unexpected accessor %+v", accessor)
	}

	unrelated := append(single, typedesc.Getter("Named", "name", "string"))
	if _, _, err := extract.ResolveAccessor(unrelated, nil); !errors.Is(err, schema.ErrAmbiguousDeclaration) {
		t.Fatalf("expected unrelated owners to be ambiguous, got %v", err)
	}
}

func TestValidateNested_ReportsPropertyChain(t *testing.T) {
	registry := mustRegistry(t,
		typedesc.Declaration{Name: "Person", Managed: true, Properties: []typedesc.PropertyDeclaration{
			{Name: "address", Type: "Address", ReadOnly: true},
			{Name: "friend", Type: "Person"},
		}},
		typedesc.Declaration{Name: "Address", Managed: true, Properties: []typedesc.PropertyDeclaration{
			{Name: "geo", Type: "Geo", ReadOnly: true},
			{Name: "owner", Type: "Person"},
		}},
		typedesc.Declaration{Name: "Geo", Managed: true, Members: []typedesc.MemberDeclaration{{Name: "distance", Abstract: true}}},
	)
	e := extract.New()

	var resolved []string
	resolve := func(ctx context.Context, name string) (*schema.StructSchema, bool, error) {
		resolved = append(resolved, name)
		if !registry.Has(name) {
			return nil, false, nil
		}
		extraction, err := extractType(t, e, registry, name)
		if err != nil {
			return nil, false, err
		}
		return extraction.Schema, true, nil
	}

	person, err := extractType(t, e, registry, "Person")
	if err != nil {
		t.Fatalf("extract person: %v", err)
	}
	err = extract.ValidateNested(context.Background(), person.Schema, resolve)
	if !errors.Is(err, schema.ErrInstantiation) {
		t.Fatalf("expected nested instantiation failure, got %v", err)
	}
	var invalid *schema.InvalidSchemaError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidSchemaError, got %T", err)
	}
	want := "Geo (type of property geo of Address (type of property address of Person))"
	if invalid.Context != want {
		t.Fatalf("unexpected context %q", invalid.Context)
	}
	if diff := cmp.Diff([]string{"Address", "Geo"}, resolved); diff != "" {
		t.Fatalf("resolved types mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateNested_SkipsValueTypes(t *testing.T) {
	registry := testsupport.PeopleRegistry(t)
	person, err := extractType(t, extract.New(), registry, "Person")
	if err != nil {
		t.Fatalf("extract person: %v", err)
	}
	calls := 0
	resolve := func(context.Context, string) (*schema.StructSchema, bool, error) {
		calls++
		return nil, false, nil
	}
	if err := extract.ValidateNested(context.Background(), person.Schema, resolve); err != nil {
		t.Fatalf("validate nested: %v", err)
	}
	// string, int and Address are each asked about once.
	if calls != 3 {
		t.Fatalf("expected 3 lookups, got %d", calls)
	}
}
