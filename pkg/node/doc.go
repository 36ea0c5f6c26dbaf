// Package node provides the mutable model tree that synthesised instances are
// bound into.
package node
