package schema

// Type identifies a described type. Managed types are synthesised by the
// library; unmanaged types are supplied from outside and only described.
type Type struct {
	Name    string `json:"name" yaml:"name"`
	Managed bool   `json:"managed,omitempty" yaml:"managed,omitempty"`
}

func (t Type) String() string {
	return t.Name
}

// AccessorRole distinguishes property readers from writers.
type AccessorRole string

const (
	RoleGetter AccessorRole = "getter"
	RoleSetter AccessorRole = "setter"
)

// Annotation is a marker attached to an accessor declaration. Kind is the
// identity used when merging declarations; Params carry free-form arguments.
type Annotation struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Accessor is a single declaration of a property getter or setter on one
// type of a hierarchy.
type Accessor struct {
	Owner       string       `json:"owner" yaml:"owner"`
	Method      string       `json:"method,omitempty" yaml:"method,omitempty"`
	Property    string       `json:"property" yaml:"property"`
	Role        AccessorRole `json:"role" yaml:"role"`
	ValueType   string       `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Abstract    bool         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Signature renders the accessor as Owner.method for diagnostics.
func (a Accessor) Signature() string {
	method := a.Method
	if method == "" {
		method = defaultMethodName(a.Role, a.Property)
	}
	return a.Owner + "." + method + "()"
}

func defaultMethodName(role AccessorRole, property string) string {
	if property == "" {
		return string(role)
	}
	prefix := "get"
	if role == RoleSetter {
		prefix = "set"
	}
	return prefix + upperFirst(property)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// Member is a non-property method declared on a type. Abstract members must
// be implemented by the instance factory for the type to be instantiable.
type Member struct {
	Owner    string `json:"owner" yaml:"owner"`
	Name     string `json:"name" yaml:"name"`
	Abstract bool   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// TypeDescription is what a TypeSource supplies for a type: its identity,
// direct supertypes, and every accessor and member visible through its
// hierarchy. Accessors for the same property and role must be listed
// most-specific first.
type TypeDescription struct {
	Type       Type       `json:"type" yaml:"type"`
	Supertypes []string   `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Accessors  []Accessor `json:"accessors,omitempty" yaml:"accessors,omitempty"`
	Members    []Member   `json:"members,omitempty" yaml:"members,omitempty"`
}
