// Package extract derives StructSchemas from type descriptions.
//
// Accessor declarations for a property are reconciled into a single
// descriptor: the most specific declaration decides abstractness, and
// annotations are merged with the first declaration of each kind winning.
// Type sources are expected to list declarations most-specific first. The
// extractor moves the most specific declaration to the front when it is
// supplied elsewhere; the relative order of the remaining declarations is
// taken as given.
//
// Managed types additionally register a validator that instantiates the
// schema against instance.NoOpState, so a type that cannot be synthesised is
// rejected when its schema is extracted rather than on first use.
package extract
