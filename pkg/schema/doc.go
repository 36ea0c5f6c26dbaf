// Package schema defines the structural description of managed types: the
// accessor declarations supplied by a type source, the per-property
// descriptors derived from them, and the StructSchema that ties properties
// and aspects together. Extraction logic lives in pkg/extract; this package
// only holds immutable data and the error taxonomy shared by every stage.
package schema
