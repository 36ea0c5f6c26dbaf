package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/node"
	"github.com/goliatone/go-managed/pkg/schema"
)

// Extraction is the outcome of extracting one type.
type Extraction struct {
	Schema   *schema.StructSchema
	Strategy string
	// Initializer is nil for types whose nodes cannot be materialised.
	Initializer node.Initializer
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the schema strategies. The first strategy that
// applies to a description wins.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = append([]Strategy(nil), strategies...)
	}
}

// WithAspectStrategies replaces the aspect strategies.
func WithAspectStrategies(strategies ...AspectStrategy) Option {
	return func(e *Extractor) {
		e.aspects = NewAspectExtractor(strategies...)
	}
}

// WithProxyFactory sets the factory used by the default managed strategy.
func WithProxyFactory(factory *instance.ProxyFactory) Option {
	return func(e *Extractor) {
		e.factory = factory
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor derives schemas from type descriptions.
type Extractor struct {
	strategies []Strategy
	aspects    *AspectExtractor
	factory    *instance.ProxyFactory
	logger     *slog.Logger
}

// New returns an Extractor with the managed and unmanaged strategies and the
// built-in aspect strategies, unless overridden.
func New(options ...Option) *Extractor {
	e := &Extractor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.factory == nil {
		e.factory = instance.NewProxyFactory()
	}
	if e.strategies == nil {
		e.strategies = []Strategy{NewManagedStructStrategy(e.factory), UnmanagedStructStrategy{}}
	}
	if e.aspects == nil {
		e.aspects = NewAspectExtractor()
	}
	return e
}

// Extract builds and validates the schema of desc. h answers hierarchy
// questions for accessor resolution; when nil, only desc itself and its
// direct supertypes are known. lookup is handed to node initializers.
func (e *Extractor) Extract(ctx context.Context, desc schema.TypeDescription, h schema.Hierarchy, lookup schema.Lookup) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if desc.Type.Name == "" {
		return nil, fmt.Errorf("extract: type name is required: %w", schema.ErrInvalidSchema)
	}
	if h == nil {
		h = descriptionHierarchy{desc: desc}
	}

	strategy := e.strategyFor(desc)
	if strategy == nil {
		return nil, fmt.Errorf("extract: no strategy applies to %s: %w", desc.Type.Name, schema.ErrInvalidSchema)
	}

	c := NewContext(desc.Type)
	properties, err := e.extractProperties(c, desc, h)
	if err != nil {
		return nil, err
	}

	aspects, err := e.aspects.Extract(c, properties)
	if err != nil {
		return nil, err
	}

	structSchema, err := strategy.CreateSchema(c, desc, properties, aspects)
	if err != nil {
		return nil, err
	}

	for _, aspect := range structSchema.Aspects() {
		if err := aspect.Validate(structSchema); err != nil {
			return nil, c.invalid("", "aspect "+aspect.Name(), err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	e.logger.Debug("extracted schema",
		"type", desc.Type.Name,
		"strategy", strategy.Name(),
		"properties", len(properties),
		"aspects", len(aspects),
	)

	return &Extraction{
		Schema:      structSchema,
		Strategy:    strategy.Name(),
		Initializer: strategy.CreateInitializer(structSchema, lookup),
	}, nil
}

func (e *Extractor) strategyFor(desc schema.TypeDescription) Strategy {
	for _, strategy := range e.strategies {
		if strategy != nil && strategy.Applies(desc) {
			return strategy
		}
	}
	return nil
}

type accessorGroup struct {
	getters []schema.Accessor
	setters []schema.Accessor
}

func (e *Extractor) extractProperties(c *Context, desc schema.TypeDescription, h schema.Hierarchy) ([]*schema.Property, error) {
	var order []string
	groups := make(map[string]*accessorGroup)
	for _, accessor := range desc.Accessors {
		if accessor.Property == "" {
			return nil, c.invalid("", fmt.Sprintf("accessor %s does not name a property", accessor.Signature()), nil)
		}
		group, ok := groups[accessor.Property]
		if !ok {
			group = &accessorGroup{}
			groups[accessor.Property] = group
			order = append(order, accessor.Property)
		}
		switch accessor.Role {
		case schema.RoleGetter:
			group.getters = append(group.getters, accessor)
		case schema.RoleSetter:
			group.setters = append(group.setters, accessor)
		default:
			return nil, c.invalid(accessor.Property, fmt.Sprintf("accessor %s has unknown role %q", accessor.Signature(), accessor.Role), nil)
		}
	}

	properties := make([]*schema.Property, 0, len(order))
	for _, name := range order {
		property, err := e.extractProperty(c, name, groups[name], h)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}

func (e *Extractor) extractProperty(c *Context, name string, group *accessorGroup, h schema.Hierarchy) (*schema.Property, error) {
	getter, err := e.resolve(c, group.getters, h)
	if err != nil {
		return nil, err
	}
	setter, err := e.resolve(c, group.setters, h)
	if err != nil {
		return nil, err
	}

	if getter == nil {
		return nil, c.invalid(name, "a setter is declared without a getter", nil)
	}
	valueType := getter.MostSpecific.ValueType
	if setter != nil {
		setterType := setter.MostSpecific.ValueType
		if setterType != "" && valueType != "" && setterType != valueType {
			return nil, c.invalid(name, fmt.Sprintf("getter type %s does not match setter type %s", valueType, setterType), nil)
		}
		if valueType == "" {
			valueType = setterType
		}
		if setter.Abstract && !getter.Abstract {
			return nil, c.invalid(name, "an abstract setter requires an abstract getter", nil)
		}
	}

	groups := [][]schema.Annotation{getter.Annotations.All()}
	if setter != nil {
		groups = append(groups, setter.Annotations.All())
	}
	return &schema.Property{
		Name:        name,
		ValueType:   valueType,
		Getter:      getter,
		Setter:      setter,
		Annotations: schema.MergeAnnotations(groups...),
	}, nil
}

func (e *Extractor) resolve(c *Context, decls []schema.Accessor, h schema.Hierarchy) (*schema.PropertyAccessor, error) {
	accessor, reordered, err := ResolveAccessor(decls, h)
	if err != nil {
		return nil, err
	}
	if reordered {
		e.logger.Warn("accessor declarations were not ordered most-specific first",
			"type", c.Type().Name,
			"property", accessor.MostSpecific.Property,
			"role", string(accessor.Role),
			"mostSpecific", accessor.MostSpecific.Signature(),
		)
	}
	return accessor, nil
}

// descriptionHierarchy answers hierarchy questions from a single description.
type descriptionHierarchy struct {
	desc schema.TypeDescription
}

func (d descriptionHierarchy) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	return sub == d.desc.Type.Name && slices.Contains(d.desc.Supertypes, super)
}

func (d descriptionHierarchy) IsManaged(name string) bool {
	return name == d.desc.Type.Name && d.desc.Type.Managed
}
