package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguousDeclaration marks accessors without a single most specific
	// declaration.
	ErrAmbiguousDeclaration = errors.New("schema: ambiguous declaration")
	// ErrInvalidSchema marks structural validation failures.
	ErrInvalidSchema = errors.New("schema: invalid schema")
	// ErrInstantiation marks failures to synthesise an instance.
	ErrInstantiation = errors.New("schema: instantiation failed")
	// ErrUnknownType is returned by type sources for undeclared types.
	ErrUnknownType = errors.New("schema: unknown type")
)

// AmbiguousDeclarationError lists the competing declarations of a property
// accessor.
type AmbiguousDeclarationError struct {
	Property   string
	Role       AccessorRole
	Candidates []string
}

func (e *AmbiguousDeclarationError) Error() string {
	return fmt.Sprintf("schema: cannot determine the most specific %s of property %q among %s",
		e.Role, e.Property, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousDeclarationError) Unwrap() error {
	return ErrAmbiguousDeclaration
}

// InvalidSchemaError reports a property or aspect rule violation.
type InvalidSchemaError struct {
	// Context describes where extraction was when the rule failed.
	Context  string
	Type     string
	Property string
	Rule     string
	Err      error
}

func (e *InvalidSchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema: invalid managed model type ")
	if e.Context != "" {
		b.WriteString(e.Context)
	} else {
		b.WriteString(e.Type)
	}
	if e.Property != "" && !strings.Contains(e.Context, "property "+e.Property) {
		fmt.Fprintf(&b, " (property %s)", e.Property)
	}
	b.WriteString(": ")
	b.WriteString(e.Rule)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *InvalidSchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidSchema}
	}
	return []error{ErrInvalidSchema, e.Err}
}

// InstantiationError wraps the cause of a failed instance synthesis.
type InstantiationError struct {
	Context string
	Type    string
	Err     error
}

func (e *InstantiationError) Error() string {
	where := e.Context
	if where == "" {
		where = e.Type
	}
	return fmt.Sprintf("schema: invalid managed model type %s: instance creation failed: %v", where, e.Err)
}

func (e *InstantiationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInstantiation}
	}
	return []error{ErrInstantiation, e.Err}
}
