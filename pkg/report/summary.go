package report

import "github.com/goliatone/go-managed/pkg/schema"

// Summary is a compact, stable view of a StructSchema used by tooling and
// golden tests.
type Summary struct {
	Type          string            `json:"type"`
	Managed       bool              `json:"managed"`
	Properties    []PropertySummary `json:"properties"`
	Aspects       []string          `json:"aspects,omitempty"`
	Unimplemented []string          `json:"unimplemented,omitempty"`
}

// PropertySummary describes one property of a Summary.
type PropertySummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Writable bool   `json:"writable"`
	Abstract bool   `json:"abstract"`
	// DeclaredIn lists the getter's declaring types, most specific first.
	DeclaredIn  []string `json:"declaredIn"`
	Annotations []string `json:"annotations,omitempty"`
}

// Summarize renders s as a Summary.
func Summarize(s *schema.StructSchema) Summary {
	if s == nil {
		return Summary{}
	}
	out := Summary{
		Type:       s.Type().Name,
		Managed:    s.Type().Managed,
		Properties: make([]PropertySummary, 0, len(s.Properties())),
	}
	for _, p := range s.Properties() {
		out.Properties = append(out.Properties, PropertySummary{
			Name:        p.Name,
			Type:        p.ValueType,
			Writable:    p.Writable(),
			Abstract:    p.Abstract(),
			DeclaredIn:  p.Getter.DeclaringTypes(),
			Annotations: p.Annotations.Kinds(),
		})
	}
	for _, aspect := range s.Aspects() {
		out.Aspects = append(out.Aspects, aspect.Name())
	}
	for _, member := range s.UnimplementedMembers() {
		out.Unimplemented = append(out.Unimplemented, member.Owner+"."+member.Name+"()")
	}
	return out
}
