// Package provider implements deferred-or-fixed single value holders
// ("suppliers"). A supplier is either fixed, missing, or computed on demand.
// Transformations are lazy and never run against a missing value.
//
// Fixed and missing suppliers are immutable and safe to share. Computed
// suppliers may re-run their function on every Get and must not be read
// concurrently without external synchronisation; call WithFinalValue to
// freeze one before handing it to other goroutines.
package provider
