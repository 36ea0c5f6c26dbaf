// Package typedesc supplies type descriptions to the schema extractor. Types
// are declared with their own properties and direct supertypes; the Registry
// walks the hierarchy and hands out flattened descriptions whose accessor
// declarations are ordered most-specific first.
//
// Declarations can be registered in code, loaded from YAML/JSON files, or
// derived from the component schemas of an OpenAPI 3 document.
package typedesc
