package node

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/schema"
)

// ErrRecursiveType is returned when a managed type nests itself through
// read-only properties.
var ErrRecursiveType = errors.New("node: recursive managed type")

// Initializer prepares a freshly created node before it is linked into the
// tree.
type Initializer interface {
	Initialize(ctx context.Context, n *Node) error
}

// InitializerFunc adapts a function into an Initializer.
type InitializerFunc func(ctx context.Context, n *Node) error

// Initialize calls the underlying function.
func (fn InitializerFunc) Initialize(ctx context.Context, n *Node) error {
	return fn(ctx, n)
}

// ValueInitializer stores a plain value on the node.
func ValueInitializer(value any) Initializer {
	return InitializerFunc(func(_ context.Context, n *Node) error {
		n.setValue(value)
		return nil
	})
}

// ManagedInitializer binds a struct schema to a node: it creates a
// node-backed state, materialises read-only properties whose type is itself
// a managed schema as initialised child nodes, and attaches the synthesised
// proxy.
type ManagedInitializer struct {
	schema  *schema.StructSchema
	lookup  schema.Lookup
	factory *instance.ProxyFactory
}

// NewManagedInitializer constructs an initializer. lookup may be nil, in
// which case nested managed properties are not materialised.
func NewManagedInitializer(s *schema.StructSchema, lookup schema.Lookup, factory *instance.ProxyFactory) *ManagedInitializer {
	if factory == nil {
		factory = instance.NewProxyFactory()
	}
	return &ManagedInitializer{schema: s, lookup: lookup, factory: factory}
}

// Schema returns the bound schema.
func (m *ManagedInitializer) Schema() *schema.StructSchema {
	return m.schema
}

type typeStackKey struct{}

// Initialize implements Initializer.
func (m *ManagedInitializer) Initialize(ctx context.Context, n *Node) error {
	if m.schema == nil {
		return &schema.InstantiationError{Err: instance.ErrSchemaRequired}
	}
	typeName := m.schema.Type().Name
	stack, _ := ctx.Value(typeStackKey{}).([]string)
	if slices.Contains(stack, typeName) {
		return fmt.Errorf("%w: %s", ErrRecursiveType, typeName)
	}
	ctx = context.WithValue(ctx, typeStackKey{}, append(slices.Clone(stack), typeName))

	if err := m.initNested(ctx, n); err != nil {
		return err
	}

	proxy, err := m.factory.Create(NewState(n), m.schema)
	if err != nil {
		return err
	}
	n.bind(m.schema, proxy)
	return nil
}

func (m *ManagedInitializer) initNested(ctx context.Context, n *Node) error {
	if m.lookup == nil {
		return nil
	}
	for _, property := range m.schema.Properties() {
		if property.Writable() || property.ValueType == "" {
			continue
		}
		nested, err := m.lookup.Schema(ctx, property.ValueType)
		if errors.Is(err, schema.ErrUnknownType) {
			continue
		}
		if err != nil {
			return fmt.Errorf("node: property %s: %w", property.Name, err)
		}
		if !nested.Type().Managed {
			continue
		}
		init := NewManagedInitializer(nested, m.lookup, m.factory)
		if _, err := n.AddChild(ctx, property.Name, init); err != nil {
			return err
		}
	}
	return nil
}
