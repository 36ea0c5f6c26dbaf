// Package store is the process-wide registry of extracted schemas.
//
// Each type is extracted at most once. Concurrent requests for the same type
// share one extraction, and both successful schemas and extraction failures
// are cached for the lifetime of the Store. A schema is only handed out once
// the model types reachable through its properties were extracted as well.
package store
