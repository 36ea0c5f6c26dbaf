package provider

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingValue reports a Get against a supplier that has no value.
var ErrMissingValue = errors.New("provider: no value present")

// NoTransformerResult is reported when a transformer declines to produce a
// value for a present input.
const NoTransformerResult = "transformer for this supplier returned no value"

// MissingValueError decorates ErrMissingValue with the supplier description.
type MissingValueError struct {
	Supplier string
	Reason   string
}

func (e *MissingValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("provider: %s: %s", e.Supplier, e.Reason)
	}
	return fmt.Sprintf("provider: %s has no value", e.Supplier)
}

// Unwrap allows errors.Is(err, ErrMissingValue).
func (e *MissingValueError) Unwrap() error {
	return ErrMissingValue
}

// TypeMismatchError is returned by FixedOf when the sanitised value cannot be
// used as the target type.
type TypeMismatchError struct {
	Owner    string
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("provider: cannot set the value of %s of type %s using an instance of type %s",
		e.Owner, typeName(e.Expected), typeName(e.Actual))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
