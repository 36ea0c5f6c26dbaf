package typedesc

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-managed/pkg/schema"
)

// Registry stores type declarations and serves flattened descriptions. It
// implements schema.TypeSource and schema.Hierarchy.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Declaration
}

var (
	_ schema.TypeSource = (*Registry)(nil)
	_ schema.Hierarchy  = (*Registry)(nil)
)

// NewRegistry returns a registry holding decls.
func NewRegistry(decls ...Declaration) (*Registry, error) {
	r := &Registry{types: make(map[string]Declaration)}
	for _, decl := range decls {
		if err := r.Register(decl); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a declaration. Duplicate names return an error.
func (r *Registry) Register(decl Declaration) error {
	decl.Name = strings.TrimSpace(decl.Name)
	if decl.Name == "" {
		return fmt.Errorf("typedesc: type name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[decl.Name]; exists {
		return fmt.Errorf("typedesc: type %q already registered", decl.Name)
	}
	r.types[decl.Name] = decl
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(decl Declaration) {
	if err := r.Register(decl); err != nil {
		panic(err)
	}
}

// Declaration returns the declaration registered under name.
func (r *Registry) Declaration(name string) (Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.types[name]
	return decl, ok
}

// Names returns registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe flattens the hierarchy of name. Accessors and members of each
// type are listed before those of its supertypes.
func (r *Registry) Describe(ctx context.Context, name string) (schema.TypeDescription, error) {
	if err := ctx.Err(); err != nil {
		return schema.TypeDescription{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	decl, ok := r.types[name]
	if !ok {
		return schema.TypeDescription{}, fmt.Errorf("%w: %s", schema.ErrUnknownType, name)
	}

	lineage, err := r.linearize(name)
	if err != nil {
		return schema.TypeDescription{}, err
	}

	desc := schema.TypeDescription{
		Type:       schema.Type{Name: decl.Name, Managed: decl.Managed},
		Supertypes: append([]string(nil), decl.Supertypes...),
	}
	for _, typeName := range lineage {
		current := r.types[typeName]
		desc.Accessors = append(desc.Accessors, current.accessors()...)
		desc.Members = append(desc.Members, overriddenMembers(desc.Members, current.members())...)
	}
	return desc, nil
}

// overriddenMembers drops members already declared by a more specific type.
func overriddenMembers(existing, candidates []schema.Member) []schema.Member {
	var out []schema.Member
	for _, candidate := range candidates {
		overridden := slices.ContainsFunc(existing, func(m schema.Member) bool {
			return m.Name == candidate.Name
		})
		if !overridden {
			out = append(out, candidate)
		}
	}
	return out
}

// IsSubtype reports whether sub is super or inherits from it.
func (r *Registry) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	lineage, err := r.linearize(sub)
	if err != nil {
		return false
	}
	return slices.Contains(lineage, super)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// IsManaged reports whether name is declared as managed.
func (r *Registry) IsManaged(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[name].Managed
}

// linearize orders name and its supertypes so that every type precedes its
// supertypes; among unrelated types the declared supertype order is kept.
// An unregistered name yields an empty lineage, an unregistered supertype an
// error. Callers must hold the read lock.
func (r *Registry) linearize(name string) ([]string, error) {
	if _, ok := r.types[name]; !ok {
		return nil, nil
	}

	var (
		post     []string
		visited  = make(map[string]bool)
		visiting = make(map[string]bool)
	)
	var visit func(current, sub string) error
	visit = func(current, sub string) error {
		if visited[current] {
			return nil
		}
		if visiting[current] {
			return fmt.Errorf("typedesc: inheritance cycle through %s: %w", current, schema.ErrInvalidSchema)
		}
		decl, ok := r.types[current]
		if !ok {
			return fmt.Errorf("%w: %s (supertype of %s)", schema.ErrUnknownType, current, sub)
		}
		visiting[current] = true
		for i := len(decl.Supertypes) - 1; i >= 0; i-- {
			if err := visit(decl.Supertypes[i], current); err != nil {
				return err
			}
		}
		visiting[current] = false
		visited[current] = true
		post = append(post, current)
		return nil
	}
	if err := visit(name, ""); err != nil {
		return nil, err
	}
	slices.Reverse(post)
	return post, nil
}
