package schema

import (
	"encoding/json"
	"maps"
)

// Annotations is an immutable mapping from annotation kind to annotation that
// keeps first-insertion order.
type Annotations struct {
	kinds  []string
	byKind map[string]Annotation
}

// MergeAnnotations folds the supplied groups into a single mapping. When the
// same kind appears more than once the first occurrence wins.
func MergeAnnotations(groups ...[]Annotation) Annotations {
	out := Annotations{byKind: make(map[string]Annotation)}
	for _, group := range groups {
		for _, annotation := range group {
			if annotation.Kind == "" {
				continue
			}
			if _, exists := out.byKind[annotation.Kind]; exists {
				continue
			}
			annotation.Params = maps.Clone(annotation.Params)
			out.byKind[annotation.Kind] = annotation
			out.kinds = append(out.kinds, annotation.Kind)
		}
	}
	return out
}

// Has reports whether an annotation of kind is present.
func (a Annotations) Has(kind string) bool {
	_, ok := a.byKind[kind]
	return ok
}

// Get returns the annotation of kind.
func (a Annotations) Get(kind string) (Annotation, bool) {
	annotation, ok := a.byKind[kind]
	if !ok {
		return Annotation{}, false
	}
	annotation.Params = maps.Clone(annotation.Params)
	return annotation, true
}

// Kinds returns annotation kinds in insertion order.
func (a Annotations) Kinds() []string {
	return append([]string(nil), a.kinds...)
}

// All returns copies of every annotation in insertion order.
func (a Annotations) All() []Annotation {
	if len(a.kinds) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(a.kinds))
	for _, kind := range a.kinds {
		annotation, _ := a.Get(kind)
		out = append(out, annotation)
	}
	return out
}

// Len returns the number of distinct kinds.
func (a Annotations) Len() int {
	return len(a.kinds)
}

// MarshalJSON encodes the annotations as an ordered array.
func (a Annotations) MarshalJSON() ([]byte, error) {
	all := a.All()
	if all == nil {
		all = []Annotation{}
	}
	return json.Marshal(all)
}
