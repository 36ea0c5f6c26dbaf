package managed

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/node"
	"github.com/goliatone/go-managed/pkg/schema"
	"github.com/goliatone/go-managed/pkg/store"
	"github.com/goliatone/go-managed/pkg/typedesc"
)

// StructSchema aliases schema.StructSchema for callers that only import the
// root package.
type StructSchema = schema.StructSchema

// Property aliases schema.Property.
type Property = schema.Property

// Annotation aliases schema.Annotation.
type Annotation = schema.Annotation

// TypeDescription aliases schema.TypeDescription.
type TypeDescription = schema.TypeDescription

// Declaration aliases typedesc.Declaration.
type Declaration = typedesc.Declaration

// PropertyDeclaration aliases typedesc.PropertyDeclaration.
type PropertyDeclaration = typedesc.PropertyDeclaration

// Node aliases node.Node.
type Node = node.Node

// Instance aliases instance.Proxy.
type Instance = instance.Proxy

// Store aliases store.Store.
type Store = store.Store

// NewStore exposes the store constructor from the top-level module.
func NewStore(options ...store.Option) *store.Store {
	return store.New(options...)
}

// NewRegistry returns an in-memory type source holding decls.
func NewRegistry(decls ...Declaration) (*typedesc.Registry, error) {
	return typedesc.NewRegistry(decls...)
}

// LoadDeclarations reads every JSON or YAML declaration file in fsys.
func LoadDeclarations(fsys fs.FS) (*typedesc.Registry, error) {
	return typedesc.LoadFS(fsys)
}

// LoadOpenAPI derives declarations from the component schemas of an OpenAPI
// document.
func LoadOpenAPI(ctx context.Context, raw []byte) (*typedesc.Registry, error) {
	return typedesc.LoadOpenAPI(ctx, raw)
}

// Instantiate extracts typeName from source and binds a fresh instance under
// a new root node. It is the simplest entry point for callers that only need
// one model object.
func Instantiate(ctx context.Context, source schema.TypeSource, typeName string, options ...store.Option) (*instance.Proxy, error) {
	s := store.New(append([]store.Option{store.WithTypeSource(source)}, options...)...)
	n, err := s.Instantiate(ctx, node.NewRoot(), typeName, typeName)
	if err != nil {
		return nil, err
	}
	if n.Instance() == nil {
		return nil, fmt.Errorf("managed: %s produced no instance", typeName)
	}
	return n.Instance(), nil
}
