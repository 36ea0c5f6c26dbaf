package extract

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/node"
	"github.com/goliatone/go-managed/pkg/schema"
)

// Strategy assembles the schema of the types it applies to and decides how
// nodes of that type are initialised.
type Strategy interface {
	Name() string
	Applies(desc schema.TypeDescription) bool
	CreateSchema(ctx *Context, desc schema.TypeDescription, properties []*schema.Property, aspects []schema.Aspect) (*schema.StructSchema, error)
	// CreateInitializer returns nil when nodes of the type cannot be
	// materialised.
	CreateInitializer(s *schema.StructSchema, lookup schema.Lookup) node.Initializer
}

// ManagedStructStrategy handles managed types. Every schema it creates is
// probed for instantiability before extraction completes.
type ManagedStructStrategy struct {
	factory *instance.ProxyFactory
}

// NewManagedStructStrategy returns a strategy synthesising instances with
// factory.
func NewManagedStructStrategy(factory *instance.ProxyFactory) *ManagedStructStrategy {
	if factory == nil {
		factory = instance.NewProxyFactory()
	}
	return &ManagedStructStrategy{factory: factory}
}

// Name implements Strategy.
func (s *ManagedStructStrategy) Name() string { return "managed" }

// Applies implements Strategy.
func (s *ManagedStructStrategy) Applies(desc schema.TypeDescription) bool {
	return desc.Type.Managed
}

// CreateSchema implements Strategy.
func (s *ManagedStructStrategy) CreateSchema(ctx *Context, desc schema.TypeDescription, properties []*schema.Property, aspects []schema.Aspect) (*schema.StructSchema, error) {
	structSchema, err := schema.NewStructSchema(desc.Type, properties, aspects, abstractMembers(desc))
	if err != nil {
		return nil, err
	}
	ctx.AddValidator(func(c *Context) error {
		return ensureCanBeInstantiated(c, s.factory, structSchema)
	})
	return structSchema, nil
}

// CreateInitializer implements Strategy.
func (s *ManagedStructStrategy) CreateInitializer(structSchema *schema.StructSchema, lookup schema.Lookup) node.Initializer {
	return node.NewManagedInitializer(structSchema, lookup, s.factory)
}

// UnmanagedStructStrategy describes types supplied from outside. Their
// schemas are not probed and nodes of these types hold plain values.
type UnmanagedStructStrategy struct{}

// Name implements Strategy.
func (UnmanagedStructStrategy) Name() string { return "unmanaged" }

// Applies implements Strategy.
func (UnmanagedStructStrategy) Applies(desc schema.TypeDescription) bool {
	return !desc.Type.Managed
}

// CreateSchema implements Strategy.
func (UnmanagedStructStrategy) CreateSchema(_ *Context, desc schema.TypeDescription, properties []*schema.Property, aspects []schema.Aspect) (*schema.StructSchema, error) {
	return schema.NewStructSchema(desc.Type, properties, aspects, abstractMembers(desc))
}

// CreateInitializer implements Strategy.
func (UnmanagedStructStrategy) CreateInitializer(*schema.StructSchema, schema.Lookup) node.Initializer {
	return nil
}

func abstractMembers(desc schema.TypeDescription) []schema.Member {
	var out []schema.Member
	for _, member := range desc.Members {
		if member.Abstract {
			out = append(out, member)
		}
	}
	return out
}

func ensureCanBeInstantiated(ctx *Context, factory *instance.ProxyFactory, s *schema.StructSchema) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &schema.InstantiationError{
				Context: ctx.Describe(),
				Type:    s.Type().Name,
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if _, createErr := factory.Create(instance.NoOpState, s); createErr != nil {
		cause := createErr
		var inst *schema.InstantiationError
		if errors.As(createErr, &inst) && inst.Err != nil {
			cause = inst.Err
		}
		return &schema.InstantiationError{Context: ctx.Describe(), Type: s.Type().Name, Err: cause}
	}
	return nil
}
