package compiler

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/restbind-dev/restbind/pkg/ir"
)

// classifierRule is one entry of the classification precedence table. Rules
// are evaluated top to bottom and the first match wins, so the order of
// classifierRules is load-bearing.
type classifierRule struct {
	name  string
	match func(s *openapi3.Schema) bool
	build func(m *typeMapper, s *openapi3.Schema) (ir.TypeNode, error)
}

var classifierRules []classifierRule

// Assigned in init rather than in the var declaration: the rule table refers
// to methods that refer back to the table, which the compiler rejects as an
// initialization cycle when declared directly.
func init() {
	classifierRules = []classifierRule{
		{
			name:  "enum",
			match: func(s *openapi3.Schema) bool { return len(s.Enum) > 0 },
			build: (*typeMapper).buildEnum,
		},
		{
			name:  "array",
			match: func(s *openapi3.Schema) bool { return s.Type != nil && s.Type.Is(openapi3.TypeArray) },
			build: (*typeMapper).buildArray,
		},
		{
			name:  "primitive",
			match: isPrimitive,
			build: (*typeMapper).buildPrimitive,
		},
		{
			name: "dictionary",
			match: func(s *openapi3.Schema) bool {
				return s.Type != nil && s.Type.Is(openapi3.TypeObject) &&
					len(s.Properties) == 0 && hasAdditionalProperties(s)
			},
			build: (*typeMapper).buildDictionary,
		},
		{
			name: "object with composition",
			match: func(s *openapi3.Schema) bool {
				return len(s.Properties) > 0 && len(s.AllOf) > 0
			},
			build: (*typeMapper).buildObject,
		},
		{
			name:  "object",
			match: func(s *openapi3.Schema) bool { return len(s.Properties) > 0 },
			build: (*typeMapper).buildObject,
		},
		{
			name:  "composition",
			match: func(s *openapi3.Schema) bool { return len(s.AllOf) > 0 },
			build: (*typeMapper).buildObject,
		},
		{
			name:  "discriminator",
			match: func(s *openapi3.Schema) bool { return s.Discriminator != nil },
			build: func(m *typeMapper, s *openapi3.Schema) (ir.TypeNode, error) {
				return ir.TypeNode{}, &UnsupportedSchemaError{
					Construct: "discriminator",
					Detail:    fmt.Sprintf("property %q", s.Discriminator.PropertyName),
				}
			},
		},
	}
}

// ClassifySchema maps one schema node into the closed type model. The mapping
// is total: any node that matches no rule becomes an empty object, which
// covers underspecified schemas without failing.
func ClassifySchema(sr *openapi3.SchemaRef) (ir.TypeNode, error) {
	m := &typeMapper{visiting: map[string]bool{}}
	return m.classify(sr)
}

// typeMapper tracks the $ref chain currently being inlined so that reference
// cycles fail instead of recursing forever.
type typeMapper struct {
	visiting map[string]bool
}

func (m *typeMapper) classify(sr *openapi3.SchemaRef) (ir.TypeNode, error) {
	if sr == nil {
		return ir.TypeNode{Kind: ir.KindObject}, nil
	}
	if sr.Ref != "" {
		if m.visiting[sr.Ref] {
			return ir.TypeNode{}, &CyclicSchemaError{Ref: sr.Ref}
		}
		m.visiting[sr.Ref] = true
		defer delete(m.visiting, sr.Ref)
	}
	s := sr.Value
	if s == nil {
		return ir.TypeNode{Kind: ir.KindObject}, nil
	}
	for _, rule := range classifierRules {
		if rule.match(s) {
			return rule.build(m, s)
		}
	}
	// Underspecified or empty schema node.
	return ir.TypeNode{Kind: ir.KindObject}, nil
}

func (m *typeMapper) buildEnum(s *openapi3.Schema) (ir.TypeNode, error) {
	vals := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		vals = append(vals, fmt.Sprint(v))
	}
	return ir.TypeNode{Kind: ir.KindEnum, EnumValues: vals}, nil
}

func (m *typeMapper) buildArray(s *openapi3.Schema) (ir.TypeNode, error) {
	elem, err := m.classify(s.Items)
	if err != nil {
		return ir.TypeNode{}, err
	}
	return ir.TypeNode{Kind: ir.KindArray, Elem: &elem}, nil
}

func (m *typeMapper) buildPrimitive(s *openapi3.Schema) (ir.TypeNode, error) {
	switch {
	case s.Type.Is(openapi3.TypeBoolean):
		return ir.TypeNode{Kind: ir.KindBoolean}, nil
	case s.Type.Is(openapi3.TypeInteger):
		if s.Format == "int32" {
			return ir.TypeNode{Kind: ir.KindInt32}, nil
		}
		return ir.TypeNode{Kind: ir.KindInt64}, nil
	case s.Type.Is(openapi3.TypeNumber):
		switch s.Format {
		case "float":
			return ir.TypeNode{Kind: ir.KindFloat}, nil
		case "int32":
			return ir.TypeNode{Kind: ir.KindInt32}, nil
		case "int64":
			return ir.TypeNode{Kind: ir.KindInt64}, nil
		}
		return ir.TypeNode{Kind: ir.KindDouble}, nil
	case s.Type.Is(openapi3.TypeString):
		switch s.Format {
		case "date":
			return ir.TypeNode{Kind: ir.KindDate}, nil
		case "date-time":
			return ir.TypeNode{Kind: ir.KindDateTime}, nil
		case "byte":
			return ir.TypeNode{Kind: ir.KindArray, Elem: &ir.TypeNode{Kind: ir.KindBytes}}, nil
		}
		return ir.TypeNode{Kind: ir.KindString}, nil
	case s.Type.Is("file"):
		return ir.TypeNode{Kind: ir.KindFile}, nil
	}
	// Unreachable while isPrimitive and this switch agree.
	return ir.TypeNode{Kind: ir.KindString}, nil
}

func (m *typeMapper) buildDictionary(s *openapi3.Schema) (ir.TypeNode, error) {
	elem, err := m.classify(s.AdditionalProperties.Schema)
	if err != nil {
		return ir.TypeNode{}, err
	}
	return ir.TypeNode{Kind: ir.KindDictionary, Elem: &elem}, nil
}

// buildObject covers the three object-shaped rules: composed properties from
// allOf come first, the node's own properties after.
func (m *typeMapper) buildObject(s *openapi3.Schema) (ir.TypeNode, error) {
	props := make([]ir.Property, 0, len(s.Properties))
	for _, sub := range s.AllOf {
		node, err := m.classify(sub)
		if err != nil {
			return ir.TypeNode{}, err
		}
		if node.Kind == ir.KindObject {
			props = append(props, node.Properties...)
		}
	}
	own, err := m.ownProperties(s)
	if err != nil {
		return ir.TypeNode{}, err
	}
	props = append(props, own...)
	return ir.TypeNode{Kind: ir.KindObject, Properties: props}, nil
}

func (m *typeMapper) ownProperties(s *openapi3.Schema) ([]ir.Property, error) {
	// Deterministic order; the document's property maps are unordered.
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)

	props := make([]ir.Property, 0, len(names))
	for _, n := range names {
		pr := s.Properties[n]
		node, err := m.classify(pr)
		if err != nil {
			return nil, err
		}
		desc := ""
		if pr != nil && pr.Value != nil {
			desc = pr.Value.Description
		}
		props = append(props, ir.Property{
			Name:        n,
			Description: desc,
			Required:    requiredByDeclaring(s, n),
			Type:        node,
		})
	}
	return props, nil
}

// requiredByDeclaring reports whether the declaring schema lists name as
// required. The property node's own flags are not consulted.
func requiredByDeclaring(s *openapi3.Schema, name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func isPrimitive(s *openapi3.Schema) bool {
	if s.Type == nil {
		return false
	}
	return s.Type.Is(openapi3.TypeBoolean) ||
		s.Type.Is(openapi3.TypeInteger) ||
		s.Type.Is(openapi3.TypeNumber) ||
		s.Type.Is(openapi3.TypeString) ||
		s.Type.Is("file")
}

func hasAdditionalProperties(s *openapi3.Schema) bool {
	if s.AdditionalProperties.Schema != nil {
		return true
	}
	return s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has
}
