package provider

import "github.com/microcosm-cc/bluemonday"

// Sanitizer normalises a candidate value before it is type-checked.
type Sanitizer interface {
	Sanitize(value any) any
}

// SanitizerFunc adapts a function into a Sanitizer.
type SanitizerFunc func(value any) any

// Sanitize calls the underlying function.
func (fn SanitizerFunc) Sanitize(value any) any {
	return fn(value)
}

// IdentitySanitizer returns values untouched.
var IdentitySanitizer Sanitizer = SanitizerFunc(func(value any) any { return value })

// HTMLSanitizer strips markup from string values using bluemonday's strict
// policy. Non-string values pass through unchanged.
func HTMLSanitizer() Sanitizer {
	policy := bluemonday.StrictPolicy()
	return SanitizerFunc(func(value any) any {
		switch v := value.(type) {
		case string:
			return policy.Sanitize(v)
		case *string:
			if v == nil {
				return v
			}
			out := policy.Sanitize(*v)
			return &out
		default:
			return value
		}
	})
}

// DisplayName describes the owner of a value in diagnostics.
type DisplayName interface {
	DisplayName() string
}

// Describable is a plain string DisplayName.
type Describable string

// DisplayName returns the string itself.
func (d Describable) DisplayName() string {
	return string(d)
}
