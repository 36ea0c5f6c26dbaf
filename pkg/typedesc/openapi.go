package typedesc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-managed/pkg/schema"
)

// OpenAPI extension keys read by LoadOpenAPI.
const (
	ExtensionManaged     = "x-managed"
	ExtensionAnnotations = "x-annotations"
	ExtensionMembers     = "x-members"
	ExtensionVariant     = "x-variant"
)

const componentSchemaPrefix = "#/components/schemas/"

// LoadOpenAPI derives declarations from the component schemas of an OpenAPI
// 3 document. allOf references become supertypes and inline allOf entries
// contribute properties. Properties become abstract getters, plus setters
// unless readOnly. Types marked x-managed are managed.
func LoadOpenAPI(ctx context.Context, raw []byte) (*Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("typedesc: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("typedesc: load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("typedesc: openapi document has no component schemas")
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	registry, _ := NewRegistry()
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		decl, err := declarationFromSchema(name, ref.Value)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(decl); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func declarationFromSchema(name string, s *openapi3.Schema) (Declaration, error) {
	decl := Declaration{Name: name}

	managed, err := boolExtension(s.Extensions, ExtensionManaged)
	if err != nil {
		return Declaration{}, fmt.Errorf("typedesc: schema %s: %w", name, err)
	}
	decl.Managed = managed

	required := make(map[string]bool, len(s.Required))
	for _, field := range s.Required {
		required[field] = true
	}

	props, err := propertiesFromSchema(name, s, required)
	if err != nil {
		return Declaration{}, err
	}

	for _, item := range s.AllOf {
		if item == nil {
			continue
		}
		if item.Ref != "" {
			decl.Supertypes = append(decl.Supertypes, refName(item.Ref))
			continue
		}
		if item.Value == nil {
			continue
		}
		for _, field := range item.Value.Required {
			required[field] = true
		}
		inline, err := propertiesFromSchema(name, item.Value, required)
		if err != nil {
			return Declaration{}, err
		}
		props = append(props, inline...)
	}
	decl.Properties = props

	if raw, ok := s.Extensions[ExtensionMembers]; ok {
		if err := decodeExtension(raw, &decl.Members); err != nil {
			return Declaration{}, fmt.Errorf("typedesc: schema %s: %s: %w", name, ExtensionMembers, err)
		}
	}
	return decl, nil
}

func propertiesFromSchema(owner string, s *openapi3.Schema, required map[string]bool) ([]PropertyDeclaration, error) {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PropertyDeclaration, 0, len(names))
	for _, name := range names {
		ref := s.Properties[name]
		if ref == nil {
			continue
		}
		prop := PropertyDeclaration{Name: name, Type: valueType(ref)}
		if ref.Value != nil {
			prop.ReadOnly = ref.Value.ReadOnly
			annotations, err := annotationsFromSchema(ref.Value, required[name])
			if err != nil {
				return nil, fmt.Errorf("typedesc: schema %s property %s: %w", owner, name, err)
			}
			prop.Annotations = annotations
		}
		out = append(out, prop)
	}
	return out, nil
}

func annotationsFromSchema(s *openapi3.Schema, required bool) ([]schema.Annotation, error) {
	var out []schema.Annotation
	if raw, ok := s.Extensions[ExtensionAnnotations]; ok {
		var custom []schema.Annotation
		if err := decodeExtension(raw, &custom); err != nil {
			return nil, fmt.Errorf("%s: %w", ExtensionAnnotations, err)
		}
		out = append(out, custom...)
	}
	variant, err := boolExtension(s.Extensions, ExtensionVariant)
	if err != nil {
		return nil, err
	}
	if variant {
		out = append(out, schema.Annotation{Kind: "variant"})
	}
	if required {
		out = append(out, schema.Annotation{Kind: "required"})
	}
	if s.Min != nil {
		out = append(out, valueAnnotation("min", formatFloat(*s.Min)))
	}
	if s.Max != nil {
		out = append(out, valueAnnotation("max", formatFloat(*s.Max)))
	}
	if s.MinLength != 0 {
		out = append(out, valueAnnotation("minLength", strconv.FormatUint(s.MinLength, 10)))
	}
	if s.MaxLength != nil {
		out = append(out, valueAnnotation("maxLength", strconv.FormatUint(*s.MaxLength, 10)))
	}
	if s.Pattern != "" {
		out = append(out, valueAnnotation("pattern", s.Pattern))
	}
	return out, nil
}

func valueAnnotation(kind, value string) schema.Annotation {
	return schema.Annotation{Kind: kind, Params: map[string]string{"value": value}}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// valueType maps an OpenAPI schema onto the value type names used by
// instance type checks. References name the referenced component.
func valueType(ref *openapi3.SchemaRef) string {
	if ref.Ref != "" {
		return refName(ref.Ref)
	}
	if ref.Value == nil || ref.Value.Type == nil {
		return "any"
	}
	values := ref.Value.Type.Slice()
	if len(values) == 0 {
		return "any"
	}
	switch values[0] {
	case openapi3.TypeInteger:
		return "int"
	case openapi3.TypeNumber:
		return "float64"
	case openapi3.TypeBoolean:
		return "bool"
	case openapi3.TypeString:
		return "string"
	case openapi3.TypeArray:
		if ref.Value.Items != nil {
			return "[]" + valueType(ref.Value.Items)
		}
		return "[]any"
	case openapi3.TypeObject:
		return "map[string]any"
	default:
		return values[0]
	}
}

func refName(ref string) string {
	if strings.HasPrefix(ref, componentSchemaPrefix) {
		return strings.TrimPrefix(ref, componentSchemaPrefix)
	}
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

func boolExtension(ext map[string]any, key string) (bool, error) {
	raw, ok := ext[key]
	if !ok {
		return false, nil
	}
	var out bool
	if err := decodeExtension(raw, &out); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

// decodeExtension converts an extension payload, raw or already decoded,
// into out.
func decodeExtension(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
