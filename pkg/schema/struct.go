package schema

import (
	"encoding/json"
	"fmt"
)

// Aspect is a schema-wide behavioural extension, such as a set of validation
// rules, attached during extraction.
type Aspect interface {
	Name() string
	Validate(schema *StructSchema) error
}

// StructSchema describes a struct-like type: its properties in declaration
// order, its aspects, and any abstract members that are not properties.
// A StructSchema is never mutated after construction.
type StructSchema struct {
	typ           Type
	properties    []*Property
	byName        map[string]*Property
	aspects       []Aspect
	unimplemented []Member
}

// NewStructSchema assembles a schema. Property names must be unique.
func NewStructSchema(typ Type, properties []*Property, aspects []Aspect, unimplemented []Member) (*StructSchema, error) {
	if typ.Name == "" {
		return nil, fmt.Errorf("schema: type name is required: %w", ErrInvalidSchema)
	}
	s := &StructSchema{
		typ:           typ,
		properties:    make([]*Property, 0, len(properties)),
		byName:        make(map[string]*Property, len(properties)),
		unimplemented: append([]Member(nil), unimplemented...),
	}
	for _, property := range properties {
		if property == nil {
			continue
		}
		if _, exists := s.byName[property.Name]; exists {
			return nil, &InvalidSchemaError{
				Type:     typ.Name,
				Property: property.Name,
				Rule:     "property names must be unique",
			}
		}
		s.byName[property.Name] = property
		s.properties = append(s.properties, property)
	}
	for _, aspect := range aspects {
		if aspect != nil {
			s.aspects = append(s.aspects, aspect)
		}
	}
	return s, nil
}

// Type returns the described type.
func (s *StructSchema) Type() Type {
	return s.typ
}

// Properties returns the properties in declaration order.
func (s *StructSchema) Properties() []*Property {
	return append([]*Property(nil), s.properties...)
}

// Property looks up a property by name.
func (s *StructSchema) Property(name string) (*Property, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// PropertyNames returns property names in declaration order.
func (s *StructSchema) PropertyNames() []string {
	names := make([]string, 0, len(s.properties))
	for _, p := range s.properties {
		names = append(names, p.Name)
	}
	return names
}

// Aspects returns the attached aspects.
func (s *StructSchema) Aspects() []Aspect {
	return append([]Aspect(nil), s.aspects...)
}

// Aspect returns the aspect registered under name.
func (s *StructSchema) Aspect(name string) (Aspect, bool) {
	for _, aspect := range s.aspects {
		if aspect.Name() == name {
			return aspect, true
		}
	}
	return nil, false
}

// UnimplementedMembers lists abstract non-property members.
func (s *StructSchema) UnimplementedMembers() []Member {
	return append([]Member(nil), s.unimplemented...)
}

func (s *StructSchema) String() string {
	return s.typ.Name
}

// MarshalJSON renders a stable description of the schema.
func (s *StructSchema) MarshalJSON() ([]byte, error) {
	aspects := make([]string, 0, len(s.aspects))
	for _, aspect := range s.aspects {
		aspects = append(aspects, aspect.Name())
	}
	return json.Marshal(struct {
		Type          Type        `json:"type"`
		Properties    []*Property `json:"properties"`
		Aspects       []string    `json:"aspects,omitempty"`
		Unimplemented []Member    `json:"unimplemented,omitempty"`
	}{
		Type:          s.typ,
		Properties:    s.properties,
		Aspects:       aspects,
		Unimplemented: s.unimplemented,
	})
}
