package cli

import (
	"fmt"
	"io"

	"github.com/restbind-dev/restbind/pkg/compiler"
	"github.com/restbind-dev/restbind/pkg/config"
	"github.com/restbind-dev/restbind/pkg/docgen"
	"github.com/restbind-dev/restbind/pkg/openapi"
)

// Params selects the document and compilation options for a CLI run. When
// ConfigPath is set the config file wins; otherwise the flag values are used.
type Params struct {
	ConfigPath  string
	Spec        string
	IncludeTags []string
	ExcludeTags []string
}

// RunValidate loads and validates an OpenAPI document.
func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

// RunCompile compiles the document and prints a summary of the compiled
// surface, one line per operation.
func RunCompile(p Params, w io.Writer) error {
	surface, err := compile(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s: %d group(s)\n", surface.Document.Info.Title, surface.Document.Info.Version, len(surface.Groups))
	for _, g := range surface.Groups {
		fmt.Fprintf(w, "%s:\n", g.Tag)
		for _, op := range g.Operations {
			ret := "nothing"
			if op.ReturnType != nil {
				ret = docgen.TypeName(*op.ReturnType)
			}
			fmt.Fprintf(w, "  %s (%s %s) -> %s\n", op.Name, op.Method, op.PathTemplate, ret)
		}
	}
	return nil
}

// RunDescribe compiles the document and renders the Markdown description of
// its surface.
func RunDescribe(p Params, w io.Writer) error {
	surface, err := compile(p)
	if err != nil {
		return err
	}
	return docgen.Render(w, surface)
}

func compile(p Params) (docgen.Surface, error) {
	spec := p.Spec
	opts := compiler.Options{
		Types:       docgen.TypeNames{},
		IncludeTags: p.IncludeTags,
		ExcludeTags: p.ExcludeTags,
	}
	if p.ConfigPath != "" {
		cfg, err := config.Load(p.ConfigPath)
		if err != nil {
			return docgen.Surface{}, err
		}
		spec = cfg.Spec
		opts.IncludeTags = cfg.IncludeTags
		opts.ExcludeTags = cfg.ExcludeTags
	}
	if spec == "" {
		return docgen.Surface{}, fmt.Errorf("either --config or --input must be provided")
	}

	parsed, err := openapi.LoadDocument(spec)
	if err != nil {
		return docgen.Surface{}, err
	}
	doc, err := compiler.Adapt(parsed)
	if err != nil {
		return docgen.Surface{}, err
	}
	groups, err := compiler.Compile(doc, opts)
	if err != nil {
		return docgen.Surface{}, err
	}
	return docgen.Surface{Document: doc, Groups: groups}, nil
}
