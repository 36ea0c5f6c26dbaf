package typedesc

import (
	"github.com/goliatone/go-managed/pkg/schema"
)

// Declaration is what a single type declares itself, without inherited
// members.
type Declaration struct {
	Name       string                `json:"name" yaml:"name"`
	Managed    bool                  `json:"managed,omitempty" yaml:"managed,omitempty"`
	Supertypes []string              `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Properties []PropertyDeclaration `json:"properties,omitempty" yaml:"properties,omitempty"`
	// Accessors lists raw accessor declarations for cases the property
	// shorthand cannot express, such as a setter without a getter.
	Accessors []schema.Accessor `json:"accessors,omitempty" yaml:"accessors,omitempty"`
	Members   []MemberDeclaration `json:"members,omitempty" yaml:"members,omitempty"`
}

// PropertyDeclaration is shorthand for a getter and, unless ReadOnly, a
// setter of the same property.
type PropertyDeclaration struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	ReadOnly bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	// Concrete marks accessors that the type implements itself.
	Concrete          bool                `json:"concrete,omitempty" yaml:"concrete,omitempty"`
	Annotations       []schema.Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	SetterAnnotations []schema.Annotation `json:"setterAnnotations,omitempty" yaml:"setterAnnotations,omitempty"`
}

// MemberDeclaration declares a non-property method.
type MemberDeclaration struct {
	Name     string `json:"name" yaml:"name"`
	Abstract bool   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Getter returns an abstract getter declaration.
func Getter(owner, property, valueType string, annotations ...schema.Annotation) schema.Accessor {
	return schema.Accessor{
		Owner:       owner,
		Property:    property,
		Role:        schema.RoleGetter,
		ValueType:   valueType,
		Abstract:    true,
		Annotations: annotations,
	}
}

// Setter returns an abstract setter declaration.
func Setter(owner, property, valueType string, annotations ...schema.Annotation) schema.Accessor {
	a := Getter(owner, property, valueType, annotations...)
	a.Role = schema.RoleSetter
	return a
}

// accessors expands the declaration into accessor declarations owned by the
// declaring type.
func (d Declaration) accessors() []schema.Accessor {
	out := make([]schema.Accessor, 0, len(d.Properties)*2+len(d.Accessors))
	for _, p := range d.Properties {
		getter := Getter(d.Name, p.Name, p.Type, p.Annotations...)
		getter.Abstract = !p.Concrete
		out = append(out, getter)
		if p.ReadOnly {
			continue
		}
		setter := Setter(d.Name, p.Name, p.Type, p.SetterAnnotations...)
		setter.Abstract = !p.Concrete
		out = append(out, setter)
	}
	for _, a := range d.Accessors {
		if a.Owner == "" {
			a.Owner = d.Name
		}
		out = append(out, a)
	}
	return out
}

func (d Declaration) members() []schema.Member {
	out := make([]schema.Member, 0, len(d.Members))
	for _, m := range d.Members {
		out = append(out, schema.Member{Owner: d.Name, Name: m.Name, Abstract: m.Abstract})
	}
	return out
}
