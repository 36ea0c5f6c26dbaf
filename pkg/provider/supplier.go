package provider

import (
	"errors"
	"fmt"
	"reflect"
)

// Supplier holds a single value that may be present, missing, or computed on
// demand.
type Supplier[T any] interface {
	// Present reports whether a value is available. Computed suppliers
	// evaluate their function to answer.
	Present() bool
	// Get returns the value or an error matching ErrMissingValue.
	Get() (T, error)
	// Value returns the value and whether it was present.
	Value() (T, bool)
	// OrElse returns a supplier that falls back to value when this one is
	// missing. Present fixed suppliers return themselves.
	OrElse(value T) Supplier[T]
	// OrElseFrom is OrElse with a supplier fallback.
	OrElseFrom(other Supplier[T]) Supplier[T]
	// WithFinalValue collapses any deferred computation into a fixed or
	// missing supplier.
	WithFinalValue() Supplier[T]
	// Type returns the runtime type of the value, or nil when unknown.
	Type() reflect.Type
	// Immutable reports whether Get always yields the same result.
	Immutable() bool
	String() string
}

// Deferred is the view of a Supplier that does not depend on its value type.
// Every supplier built by this package implements it.
type Deferred interface {
	Present() bool
	// Type returns the runtime type of the value, or nil when unknown
	// before evaluation.
	Type() reflect.Type
	Immutable() bool
	String() string
	anyValue() (any, error)
}

var (
	// True is a shared fixed supplier of true.
	True = Fixed(true)
	// False is a shared fixed supplier of false.
	False = Fixed(false)
)

// Fixed returns a supplier that always yields value. Its type is the runtime
// type of value.
func Fixed[T any](value T) Supplier[T] {
	return &fixed[T]{value: value}
}

// FixedOf sanitises value and returns a fixed supplier when the result is a
// T. A *TypeMismatchError naming owner, T and the actual type is returned
// otherwise.
func FixedOf[T any](owner DisplayName, value any, sanitizer Sanitizer) (Supplier[T], error) {
	if sanitizer == nil {
		sanitizer = IdentitySanitizer
	}
	sanitized := sanitizer.Sanitize(value)
	typed, ok := sanitized.(T)
	if !ok {
		name := "value"
		if owner != nil {
			name = owner.DisplayName()
		}
		return nil, &TypeMismatchError{
			Owner:    name,
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(sanitized),
		}
	}
	return Fixed(typed), nil
}

// Missing returns a supplier without a value.
func Missing[T any]() Supplier[T] {
	return &missing[T]{}
}

// Nullable returns Missing for nil pointers, maps, slices, interfaces, funcs
// and channels, and Fixed otherwise.
func Nullable[T any](value T) Supplier[T] {
	if isNil(value) {
		return Missing[T]()
	}
	return Fixed(value)
}

// Computed returns a supplier that evaluates fn on every read. fn reports
// false when it has no value.
func Computed[T any](fn func() (T, bool)) Supplier[T] {
	return &computed[T]{
		describe: "computed",
		eval: func() (T, error) {
			value, ok := fn()
			if !ok {
				var zero T
				return zero, &MissingValueError{Supplier: "computed value"}
			}
			return value, nil
		},
	}
}

// Map returns a supplier applying fn to the value of src when read. A missing
// src yields a missing supplier and fn is never called.
func Map[T, S any](src Supplier[T], fn func(T) S) Supplier[S] {
	if m, ok := src.(*missing[T]); ok {
		return &missing[S]{reason: m.reason}
	}
	return &computed[S]{
		describe: "map(" + src.String() + ")",
		eval: func() (S, error) {
			value, err := src.Get()
			if err != nil {
				var zero S
				return zero, err
			}
			return fn(value), nil
		},
	}
}

// MapOptional is Map for transformers that may decline to produce a value.
func MapOptional[T, S any](src Supplier[T], fn func(T) (S, bool)) Supplier[S] {
	if m, ok := src.(*missing[T]); ok {
		return &missing[S]{reason: m.reason}
	}
	describe := "map(" + src.String() + ")"
	return &computed[S]{
		describe: describe,
		eval: func() (S, error) {
			var zero S
			value, err := src.Get()
			if err != nil {
				return zero, err
			}
			out, ok := fn(value)
			if !ok {
				return zero, &MissingValueError{Supplier: describe, Reason: NoTransformerResult}
			}
			return out, nil
		},
	}
}

// Untyped returns d as a Supplier[any]. Suppliers of any are returned
// unchanged; immutable suppliers are collapsed, others stay deferred.
func Untyped(d Deferred) Supplier[any] {
	if s, ok := d.(Supplier[any]); ok {
		return s
	}
	if d.Immutable() {
		value, err := d.anyValue()
		if err != nil {
			reason := ""
			var mv *MissingValueError
			if errors.As(err, &mv) {
				reason = mv.Reason
			}
			return &missing[any]{reason: reason}
		}
		return Fixed(value)
	}
	return &computed[any]{describe: d.String(), eval: d.anyValue}
}

// Checked defers to src and fails reads of values that are not of type
// expected with a *TypeMismatchError naming owner.
func Checked(owner string, expected reflect.Type, src Supplier[any]) Supplier[any] {
	return &computed[any]{
		describe: src.String(),
		eval: func() (any, error) {
			value, err := src.Get()
			if err != nil {
				return nil, err
			}
			if value != nil && reflect.TypeOf(value) != expected {
				return nil, &TypeMismatchError{Owner: owner, Expected: expected, Actual: reflect.TypeOf(value)}
			}
			return value, nil
		},
	}
}

type fixed[T any] struct {
	value T
}

func (f *fixed[T]) Present() bool                      { return true }
func (f *fixed[T]) Get() (T, error)                    { return f.value, nil }
func (f *fixed[T]) Value() (T, bool)                   { return f.value, true }
func (f *fixed[T]) OrElse(T) Supplier[T]               { return f }
func (f *fixed[T]) OrElseFrom(Supplier[T]) Supplier[T] { return f }
func (f *fixed[T]) WithFinalValue() Supplier[T]        { return f }
func (f *fixed[T]) Immutable() bool                    { return true }
func (f *fixed[T]) anyValue() (any, error)             { return f.value, nil }

func (f *fixed[T]) Type() reflect.Type {
	return reflect.TypeOf(any(f.value))
}

func (f *fixed[T]) String() string {
	return fmt.Sprintf("fixed(%s, %v)", typeName(f.Type()), f.value)
}

type missing[T any] struct {
	reason string
}

func (m *missing[T]) Present() bool { return false }

func (m *missing[T]) Get() (T, error) {
	var zero T
	return zero, &MissingValueError{Supplier: "undefined", Reason: m.reason}
}

func (m *missing[T]) Value() (T, bool) {
	var zero T
	return zero, false
}

func (m *missing[T]) OrElse(value T) Supplier[T] {
	return Fixed(value)
}

func (m *missing[T]) OrElseFrom(other Supplier[T]) Supplier[T] {
	if other == nil {
		return m
	}
	return other
}

func (m *missing[T]) WithFinalValue() Supplier[T] { return m }
func (m *missing[T]) Type() reflect.Type          { return nil }
func (m *missing[T]) Immutable() bool             { return true }
func (m *missing[T]) String() string              { return "undefined" }

func (m *missing[T]) anyValue() (any, error) {
	_, err := m.Get()
	return nil, err
}

type computed[T any] struct {
	describe string
	eval     func() (T, error)
}

func (c *computed[T]) Present() bool {
	_, err := c.eval()
	return err == nil
}

func (c *computed[T]) Get() (T, error) {
	return c.eval()
}

func (c *computed[T]) Value() (T, bool) {
	value, err := c.eval()
	return value, err == nil
}

func (c *computed[T]) OrElse(value T) Supplier[T] {
	return &computed[T]{
		describe: "orElse(" + c.describe + ")",
		eval: func() (T, error) {
			if v, err := c.eval(); err == nil {
				return v, nil
			}
			return value, nil
		},
	}
}

func (c *computed[T]) OrElseFrom(other Supplier[T]) Supplier[T] {
	if other == nil {
		return c
	}
	return &computed[T]{
		describe: "orElse(" + c.describe + ", " + other.String() + ")",
		eval: func() (T, error) {
			if v, err := c.eval(); err == nil {
				return v, nil
			}
			return other.Get()
		},
	}
}

func (c *computed[T]) WithFinalValue() Supplier[T] {
	value, err := c.eval()
	if err != nil {
		reason := ""
		var mv *MissingValueError
		if errors.As(err, &mv) {
			reason = mv.Reason
		}
		return &missing[T]{reason: reason}
	}
	return Fixed(value)
}

func (c *computed[T]) Type() reflect.Type {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface {
		return nil
	}
	return t
}

func (c *computed[T]) Immutable() bool { return false }

func (c *computed[T]) anyValue() (any, error) {
	value, err := c.eval()
	if err != nil {
		return nil, err
	}
	return value, nil
}
func (c *computed[T]) String() string  { return c.describe }

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
