// Package docgen renders a compiled binding surface as Markdown. It also
// provides the type-naming collaborator the operation compiler accepts.
package docgen

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/restbind-dev/restbind/pkg/compiler"
	"github.com/restbind-dev/restbind/pkg/ir"
)

//go:embed templates/*
var templatesFS embed.FS

// TypeNames implements compiler.TypeCompiler with human-readable structural
// type names for documentation output.
type TypeNames struct{}

// CompileType renders the name for a type-model node. Optional types carry a
// trailing question mark.
func (TypeNames) CompileType(node ir.TypeNode, required bool) string {
	name := TypeName(node)
	if !required {
		name += "?"
	}
	return name
}

// TypeName renders the structural name of a type-model node.
func TypeName(node ir.TypeNode) string {
	switch node.Kind {
	case ir.KindArray:
		if node.Elem != nil {
			return "[]" + TypeName(*node.Elem)
		}
		return "[]object"
	case ir.KindDictionary:
		if node.Elem != nil {
			return "map[string]" + TypeName(*node.Elem)
		}
		return "map[string]object"
	case ir.KindEnum:
		return "enum(" + strings.Join(node.EnumValues, "|") + ")"
	case ir.KindObject:
		if len(node.Properties) == 0 {
			return "object"
		}
		return fmt.Sprintf("object{%d fields}", len(node.Properties))
	default:
		return string(node.Kind)
	}
}

// Surface is the template input: one adapted document plus its compiled
// operation groups.
type Surface struct {
	Document ir.Document
	Groups   []compiler.CompiledGroup
}

// Render writes the Markdown description of a compiled surface to w.
func Render(w io.Writer, surface Surface) error {
	funcMap := template.FuncMap{
		"typeName": TypeName,
		"returns": func(op compiler.CompiledOperation) string {
			if op.ReturnType == nil {
				return "nothing"
			}
			return TypeName(*op.ReturnType)
		},
		"baseAddress": baseAddress,
	}
	for k, v := range sprig.TxtFuncMap() {
		if _, ok := funcMap[k]; !ok {
			funcMap[k] = v
		}
	}

	tmpl, err := template.New("surface.md.gotmpl").Funcs(funcMap).ParseFS(templatesFS, "templates/*.gotmpl")
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "surface.md.gotmpl", surface)
}

func baseAddress(doc ir.Document) string {
	scheme := "http"
	if len(doc.Schemes) > 0 {
		scheme = doc.Schemes[0]
	}
	return scheme + "://" + doc.Host + doc.BasePath
}
