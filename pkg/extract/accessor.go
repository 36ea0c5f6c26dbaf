package extract

import (
	"github.com/goliatone/go-managed/pkg/schema"
)

// ResolveAccessor reconciles the declarations of one accessor role of a
// property. reordered reports whether the most specific declaration had to
// be moved to the front of decls. A nil h relates each owner only to itself
// and knows no managed types.
func ResolveAccessor(decls []schema.Accessor, h schema.Hierarchy) (accessor *schema.PropertyAccessor, reordered bool, err error) {
	if len(decls) == 0 {
		return nil, false, nil
	}
	if h == nil {
		h = ownerHierarchy{}
	}

	idx := mostSpecific(decls, h)
	if idx < 0 {
		candidates := make([]string, 0, len(decls))
		for _, decl := range decls {
			candidates = append(candidates, decl.Signature())
		}
		return nil, false, &schema.AmbiguousDeclarationError{
			Property:   decls[0].Property,
			Role:       decls[0].Role,
			Candidates: candidates,
		}
	}

	ordered := make([]schema.Accessor, 0, len(decls))
	ordered = append(ordered, decls[idx])
	ordered = append(ordered, decls[:idx]...)
	ordered = append(ordered, decls[idx+1:]...)

	winner := ordered[0]
	groups := make([][]schema.Annotation, 0, len(ordered))
	managed := false
	for _, decl := range ordered {
		groups = append(groups, decl.Annotations)
		if h.IsManaged(decl.Owner) {
			managed = true
		}
	}

	return &schema.PropertyAccessor{
		Role:                  winner.Role,
		Declarations:          ordered,
		MostSpecific:          winner,
		DeclaredInManagedType: managed,
		Abstract:              winner.Abstract,
		Annotations:           schema.MergeAnnotations(groups...),
	}, idx != 0, nil
}

// mostSpecific returns the index of the first declaration whose owner is a
// subtype of every other owner, or -1.
func mostSpecific(decls []schema.Accessor, h schema.Hierarchy) int {
	for i, candidate := range decls {
		ok := true
		for j, other := range decls {
			if i == j {
				continue
			}
			if !h.IsSubtype(candidate.Owner, other.Owner) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

type ownerHierarchy struct{}

func (ownerHierarchy) IsSubtype(sub, super string) bool { return sub == super }
func (ownerHierarchy) IsManaged(string) bool            { return false }
