package schema

// PropertyAccessor describes one role (getter or setter) of a property after
// all declarations across the hierarchy have been reconciled.
type PropertyAccessor struct {
	Role AccessorRole `json:"role"`
	// Declarations lists every declaring accessor, most specific first.
	Declarations []Accessor `json:"declarations"`
	// MostSpecific is the declaration that overrides all others.
	MostSpecific Accessor `json:"mostSpecific"`
	// DeclaredInManagedType is true when any declaration belongs to a
	// managed type.
	DeclaredInManagedType bool `json:"declaredInManagedType"`
	// Abstract is taken from the most specific declaration only.
	Abstract    bool        `json:"abstract"`
	Annotations Annotations `json:"annotations"`
}

// DeclaringTypes returns the owner of each declaration in order.
func (a *PropertyAccessor) DeclaringTypes() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Declarations))
	for _, decl := range a.Declarations {
		out = append(out, decl.Owner)
	}
	return out
}

// Property is a named, typed slot of a StructSchema.
type Property struct {
	Name      string            `json:"name"`
	ValueType string            `json:"valueType"`
	Getter    *PropertyAccessor `json:"getter"`
	Setter    *PropertyAccessor `json:"setter,omitempty"`
	// Annotations merges getter annotations ahead of setter annotations.
	Annotations Annotations `json:"annotations"`
}

// Writable reports whether the property declares a setter.
func (p *Property) Writable() bool {
	return p != nil && p.Setter != nil
}

// Abstract reports whether the property's getter is abstract and therefore
// backed by element state.
func (p *Property) Abstract() bool {
	return p != nil && p.Getter != nil && p.Getter.Abstract
}

// DeclaredInManagedType reports whether either accessor is declared within
// the managed boundary.
func (p *Property) DeclaredInManagedType() bool {
	if p == nil {
		return false
	}
	if p.Getter != nil && p.Getter.DeclaredInManagedType {
		return true
	}
	return p.Setter != nil && p.Setter.DeclaredInManagedType
}
