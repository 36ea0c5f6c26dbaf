package schema

import "context"

// TypeSource supplies type descriptions. Implementations live in
// pkg/typedesc.
type TypeSource interface {
	Describe(ctx context.Context, name string) (TypeDescription, error)
}

// Catalog is implemented by type sources that can tell whether a type is
// declared without describing it.
type Catalog interface {
	Has(name string) bool
}

// Hierarchy answers subtype and managed-type questions for accessor
// resolution.
type Hierarchy interface {
	// IsSubtype reports whether sub equals super or inherits from it.
	IsSubtype(sub, super string) bool
	// IsManaged reports whether the named type is synthesised by the
	// library rather than supplied from outside.
	IsManaged(name string) bool
}

// Lookup resolves extracted schemas by type name.
type Lookup interface {
	Schema(ctx context.Context, name string) (*StructSchema, error)
}
