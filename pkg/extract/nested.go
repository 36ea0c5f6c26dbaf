package extract

import (
	"context"
	"errors"

	"github.com/goliatone/go-managed/pkg/schema"
)

// NestedResolver returns the extracted schema of a property value type. ok
// is false for value types that are not model types, such as scalars.
type NestedResolver func(ctx context.Context, typeName string) (s *schema.StructSchema, ok bool, err error)

// ValidateNested checks that every model type reachable through the
// properties of root can be extracted. Each type is resolved once; types
// already on the walk, root included, are not revisited, so recursive types
// terminate. Failures are reported in the context of the property chain that
// reached them, such as "Address (type of property address of Person)".
func ValidateNested(ctx context.Context, root *schema.StructSchema, resolve NestedResolver) error {
	if root == nil || resolve == nil {
		return nil
	}
	visited := map[string]bool{root.Type().Name: true}
	return validateNested(ctx, NewContext(root.Type()), root, resolve, visited)
}

func validateNested(ctx context.Context, c *Context, s *schema.StructSchema, resolve NestedResolver, visited map[string]bool) error {
	for _, property := range s.Properties() {
		name := property.ValueType
		if name == "" || visited[name] {
			continue
		}
		visited[name] = true

		nested, ok, err := resolve(ctx, name)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return c.Child(property.Name, schema.Type{Name: name}).invalid("", "property type cannot be extracted", err)
		}
		if !ok {
			continue
		}
		if err := validateNested(ctx, c.Child(property.Name, nested.Type()), nested, resolve, visited); err != nil {
			return err
		}
	}
	return nil
}
