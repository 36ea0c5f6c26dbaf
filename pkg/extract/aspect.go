package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-managed/pkg/schema"
)

// Annotation kinds understood by the built-in aspect strategies.
const (
	AnnotationVariant   = "variant"
	AnnotationMin       = "min"
	AnnotationMax       = "max"
	AnnotationMinLength = "minLength"
	AnnotationMaxLength = "maxLength"
	AnnotationPattern   = "pattern"
)

// AspectStrategy derives an aspect from a type's properties. It returns a nil
// aspect when it does not apply.
type AspectStrategy interface {
	Extract(ctx *Context, properties []*schema.Property) (schema.Aspect, error)
}

// AspectStrategyFunc adapts a function into an AspectStrategy.
type AspectStrategyFunc func(ctx *Context, properties []*schema.Property) (schema.Aspect, error)

// Extract calls the underlying function.
func (fn AspectStrategyFunc) Extract(ctx *Context, properties []*schema.Property) (schema.Aspect, error) {
	return fn(ctx, properties)
}

// AspectExtractor runs every registered strategy in order.
type AspectExtractor struct {
	strategies []AspectStrategy
}

// NewAspectExtractor returns an extractor using strategies. When none are
// supplied the built-in variant and constraint strategies are used.
func NewAspectExtractor(strategies ...AspectStrategy) *AspectExtractor {
	if len(strategies) == 0 {
		strategies = DefaultAspectStrategies()
	}
	return &AspectExtractor{strategies: strategies}
}

// DefaultAspectStrategies returns the built-in strategies.
func DefaultAspectStrategies() []AspectStrategy {
	return []AspectStrategy{VariantAspectStrategy{}, ConstraintAspectStrategy{}}
}

// Extract collects the aspects that apply to properties.
func (e *AspectExtractor) Extract(ctx *Context, properties []*schema.Property) ([]schema.Aspect, error) {
	var aspects []schema.Aspect
	for _, strategy := range e.strategies {
		if strategy == nil {
			continue
		}
		aspect, err := strategy.Extract(ctx, properties)
		if err != nil {
			return nil, err
		}
		if aspect != nil {
			aspects = append(aspects, aspect)
		}
	}
	return aspects, nil
}

// VariantAspect lists the properties that distinguish variants of a type.
type VariantAspect struct {
	Properties []string
}

// Name implements schema.Aspect.
func (VariantAspect) Name() string { return "variant" }

// Validate requires every variant property to be a string or bool.
func (a VariantAspect) Validate(s *schema.StructSchema) error {
	for _, name := range a.Properties {
		p, ok := s.Property(name)
		if !ok {
			return fmt.Errorf("variant property %s is not declared", name)
		}
		switch p.ValueType {
		case "string", "bool", "boolean":
		default:
			return fmt.Errorf("variant property %s must be a string or bool, found %s", name, p.ValueType)
		}
	}
	return nil
}

// VariantAspectStrategy collects properties annotated "variant".
type VariantAspectStrategy struct{}

// Extract implements AspectStrategy.
func (VariantAspectStrategy) Extract(_ *Context, properties []*schema.Property) (schema.Aspect, error) {
	var names []string
	for _, p := range properties {
		if p.Annotations.Has(AnnotationVariant) {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	return VariantAspect{Properties: names}, nil
}

// Constraint is a parsed validation rule attached to a property.
type Constraint struct {
	Property string
	Kind     string
	Value    string
}

// ConstraintAspect holds validation constraints declared through
// annotations.
type ConstraintAspect struct {
	Constraints []Constraint
}

// Name implements schema.Aspect.
func (ConstraintAspect) Name() string { return "constraints" }

// For returns the constraints of property in declaration order.
func (a ConstraintAspect) For(property string) []Constraint {
	var out []Constraint
	for _, c := range a.Constraints {
		if c.Property == property {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks rule parameters and that bounds are consistent.
func (a ConstraintAspect) Validate(s *schema.StructSchema) error {
	bounds := make(map[string]map[string]float64)
	for _, c := range a.Constraints {
		if _, ok := s.Property(c.Property); !ok {
			return fmt.Errorf("constraint on undeclared property %s", c.Property)
		}
		switch c.Kind {
		case AnnotationPattern:
			if _, err := regexp.Compile(c.Value); err != nil {
				return fmt.Errorf("property %s: invalid pattern %q: %w", c.Property, c.Value, err)
			}
		default:
			n, err := strconv.ParseFloat(c.Value, 64)
			if err != nil {
				return fmt.Errorf("property %s: %s requires a numeric value, got %q", c.Property, c.Kind, c.Value)
			}
			if bounds[c.Property] == nil {
				bounds[c.Property] = make(map[string]float64)
			}
			bounds[c.Property][c.Kind] = n
		}
	}
	for property, b := range bounds {
		if err := checkRange(property, b, AnnotationMin, AnnotationMax); err != nil {
			return err
		}
		if err := checkRange(property, b, AnnotationMinLength, AnnotationMaxLength); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(property string, bounds map[string]float64, lowKind, highKind string) error {
	low, hasLow := bounds[lowKind]
	high, hasHigh := bounds[highKind]
	if hasLow && hasHigh && low > high {
		return fmt.Errorf("property %s: %s %v exceeds %s %v", property, lowKind, low, highKind, high)
	}
	return nil
}

// ConstraintAspectStrategy collects min/max/minLength/maxLength/pattern
// annotations. The rule value is read from the "value" parameter.
type ConstraintAspectStrategy struct{}

var constraintKinds = []string{AnnotationMin, AnnotationMax, AnnotationMinLength, AnnotationMaxLength, AnnotationPattern}

// Extract implements AspectStrategy.
func (ConstraintAspectStrategy) Extract(ctx *Context, properties []*schema.Property) (schema.Aspect, error) {
	var constraints []Constraint
	for _, p := range properties {
		for _, kind := range constraintKinds {
			annotation, ok := p.Annotations.Get(kind)
			if !ok {
				continue
			}
			value, ok := annotation.Params["value"]
			if !ok {
				return nil, ctx.invalid(p.Name, fmt.Sprintf("%s annotation requires a value parameter", kind), nil)
			}
			constraints = append(constraints, Constraint{Property: p.Name, Kind: kind, Value: value})
		}
	}
	if len(constraints) == 0 {
		return nil, nil
	}
	return ConstraintAspect{Constraints: constraints}, nil
}
