package instance

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-managed/pkg/provider"
	"github.com/goliatone/go-managed/pkg/schema"
)

var (
	// ErrUnknownProperty is returned for names outside the schema.
	ErrUnknownProperty = errors.New("instance: unknown property")
	// ErrReadOnlyProperty is returned when writing a property without a
	// setter.
	ErrReadOnlyProperty = errors.New("instance: property is read-only")
	// ErrUnknownMember is returned by Call for members without an
	// implementation.
	ErrUnknownMember = errors.New("instance: unknown member")
)

// scalarTypes maps value type names that Set checks eagerly.
var scalarTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"boolean": reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"integer": reflect.TypeFor[int](),
	"int64":   reflect.TypeFor[int64](),
	"float64": reflect.TypeFor[float64](),
	"number":  reflect.TypeFor[float64](),
}

type binding struct {
	property *schema.Property
	get      func() provider.Supplier[any]
	set      func(value any) error
}

func newBinding(state ElementState, property *schema.Property) binding {
	name := property.Name
	b := binding{
		property: property,
		get: func() provider.Supplier[any] {
			value, ok := state.Get(name)
			if !ok {
				return provider.Missing[any]()
			}
			if deferred, ok := value.(provider.Deferred); ok {
				return provider.Untyped(deferred)
			}
			return provider.Nullable(value)
		},
	}
	if !property.Writable() {
		b.set = func(any) error {
			return fmt.Errorf("%w: %s", ErrReadOnlyProperty, name)
		}
		return b
	}
	owner := provider.Describable(displayName(state) + "." + name)
	expected, checked := scalarTypes[property.ValueType]
	mismatch := func(actual reflect.Type) error {
		return &provider.TypeMismatchError{
			Owner:    owner.DisplayName(),
			Expected: expected,
			Actual:   actual,
		}
	}
	b.set = func(value any) error {
		deferred, isDeferred := value.(provider.Deferred)
		switch {
		case isDeferred && !checked:
			state.Set(name, provider.Untyped(deferred))
		case isDeferred && deferred.Type() == nil:
			// Value type unknown until read.
			state.Set(name, provider.Checked(owner.DisplayName(), expected, provider.Untyped(deferred)))
		case isDeferred:
			if deferred.Type() != expected {
				return mismatch(deferred.Type())
			}
			state.Set(name, provider.Untyped(deferred))
		default:
			if value != nil && checked && reflect.TypeOf(value) != expected {
				return mismatch(reflect.TypeOf(value))
			}
			state.Set(name, value)
		}
		return nil
	}
	return b
}

// Proxy is a synthesised instance of a struct schema. Property reads and
// writes are dispatched by name to the backing ElementState.
type Proxy struct {
	schema   *schema.StructSchema
	state    ElementState
	bindings map[string]binding
	members  map[string]MemberFunc
}

// Get returns the property value as a supplier. Stored suppliers are
// returned as suppliers of any, so deferred values stay deferred.
func (p *Proxy) Get(name string) (provider.Supplier[any], error) {
	b, ok := p.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownProperty, name, p.schema.Type().Name)
	}
	return b.get(), nil
}

// Set writes a property value. Values for well-known scalar types are
// type-checked; suppliers are checked by their declared type, or on read
// when that type is only known after evaluation.
func (p *Proxy) Set(name string, value any) error {
	b, ok := p.bindings[name]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownProperty, name, p.schema.Type().Name)
	}
	return b.set(value)
}

// Call invokes a registered member implementation.
func (p *Proxy) Call(member string, args ...any) (any, error) {
	fn, ok := p.members[member]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownMember, member, p.schema.Type().Name)
	}
	return fn(p, args...)
}

// Schema returns the schema the proxy was built from.
func (p *Proxy) Schema() *schema.StructSchema {
	return p.schema
}

// State returns the backing element state.
func (p *Proxy) State() ElementState {
	return p.state
}

// DisplayName prefers the state's display name and falls back to the type.
func (p *Proxy) DisplayName() string {
	return displayName(p.state, p.schema)
}

func (p *Proxy) String() string {
	return p.DisplayName()
}

func displayName(state ElementState, fallback ...*schema.StructSchema) string {
	if name := state.DisplayName(); name != "" {
		return name
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0].Type().Name
	}
	return "instance"
}
