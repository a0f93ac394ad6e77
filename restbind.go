// Package restbind turns an OpenAPI description into a typed, callable
// binding layer: every schema becomes a node of a closed type model, and
// every operation becomes a compiled call signature plus a request-binding
// algorithm executed by a thin runtime.
//
// Quick start:
//
//	client, err := restbind.NewClient("https://petstore.swagger.io/v2/swagger.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	pet, err := client.Call(ctx, "pet", "GetPetById", binder.Args{"petId": 42})
//
// For finer control use the compiler and binder packages directly.
package restbind

import (
	"context"
	"io"

	"github.com/restbind-dev/restbind/pkg/binder"
	"github.com/restbind-dev/restbind/pkg/compiler"
	"github.com/restbind-dev/restbind/pkg/config"
	"github.com/restbind-dev/restbind/pkg/docgen"
	"github.com/restbind-dev/restbind/pkg/ir"
	"github.com/restbind-dev/restbind/pkg/openapi"
)

// CompileFile loads a spec from a file path or HTTP(S) URL and compiles its
// binding surface.
func CompileFile(spec string) (ir.Document, []compiler.CompiledGroup, error) {
	return CompileFileWithOptions(spec, compiler.Options{})
}

// CompileFileWithOptions is CompileFile with explicit compilation options.
func CompileFileWithOptions(spec string, opts compiler.Options) (ir.Document, []compiler.CompiledGroup, error) {
	parsed, err := openapi.LoadDocument(spec)
	if err != nil {
		return ir.Document{}, nil, err
	}
	doc, err := compiler.Adapt(parsed)
	if err != nil {
		return ir.Document{}, nil, err
	}
	groups, err := compiler.Compile(doc, opts)
	if err != nil {
		return ir.Document{}, nil, err
	}
	return doc, groups, nil
}

// DescribeFile compiles a spec and writes its Markdown description to w.
func DescribeFile(spec string, w io.Writer) error {
	doc, groups, err := CompileFileWithOptions(spec, compiler.Options{Types: docgen.TypeNames{}})
	if err != nil {
		return err
	}
	return docgen.Render(w, docgen.Surface{Document: doc, Groups: groups})
}

// ValidateSpec loads and validates an OpenAPI document without compiling it.
func ValidateSpec(spec string) error {
	return openapi.ValidateDocument(spec)
}

// Client pairs a compiled surface with a request binder so operations can be
// invoked by group and name.
type Client struct {
	Document ir.Document
	Groups   []compiler.CompiledGroup

	binder *binder.Binder
}

// NewClient compiles spec and constructs a binder for it. Binder options
// (default headers, HTTP client, base URL) apply to every call.
func NewClient(spec string, opts ...binder.Option) (*Client, error) {
	doc, groups, err := CompileFile(spec)
	if err != nil {
		return nil, err
	}
	return &Client{
		Document: doc,
		Groups:   groups,
		binder:   binder.New(doc, opts...),
	}, nil
}

// NewClientFromConfig compiles the configured spec with the config's tag
// filters and applies its binding settings (base URL override, ordered
// default headers). Explicit opts are applied after the config's and win on
// conflict.
func NewClientFromConfig(cfg *config.Config, opts ...binder.Option) (*Client, error) {
	doc, groups, err := CompileFileWithOptions(cfg.Spec, compiler.Options{
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
	})
	if err != nil {
		return nil, err
	}
	all := append(binderOptions(cfg), opts...)
	return &Client{
		Document: doc,
		Groups:   groups,
		binder:   binder.New(doc, all...),
	}, nil
}

// binderOptions converts the config's binding settings into binder options.
func binderOptions(cfg *config.Config) []binder.Option {
	var opts []binder.Option
	if cfg.BaseURL != "" {
		opts = append(opts, binder.WithBaseURL(cfg.BaseURL))
	}
	if len(cfg.Headers) > 0 {
		headers := make([]binder.Header, len(cfg.Headers))
		for i, h := range cfg.Headers {
			headers[i] = binder.Header{Name: h.Name, Value: h.Value}
		}
		opts = append(opts, binder.WithDefaultHeaders(headers))
	}
	return opts
}

// Operation looks up a compiled operation by group and compiled name.
func (c *Client) Operation(group, name string) (compiler.CompiledOperation, bool) {
	for _, g := range c.Groups {
		if g.Tag != group {
			continue
		}
		for _, op := range g.Operations {
			if op.Name == name {
				return op, true
			}
		}
	}
	return compiler.CompiledOperation{}, false
}

// Call invokes one operation with the given arguments and returns the
// decoded response value, nil for void operations.
func (c *Client) Call(ctx context.Context, group, name string, args binder.Args) (any, error) {
	op, ok := c.Operation(group, name)
	if !ok {
		return nil, &UnknownOperationError{Group: group, Name: name}
	}
	return c.binder.Invoke(ctx, op, args)
}

// CallInto invokes one operation and decodes the response into out.
func (c *Client) CallInto(ctx context.Context, group, name string, args binder.Args, out any) error {
	op, ok := c.Operation(group, name)
	if !ok {
		return &UnknownOperationError{Group: group, Name: name}
	}
	return c.binder.InvokeInto(ctx, op, args, out)
}

// UnknownOperationError is returned by Call for a group/name pair the
// compiled surface does not contain.
type UnknownOperationError struct {
	Group string
	Name  string
}

// Error returns a human-readable error message.
func (e *UnknownOperationError) Error() string {
	return "unknown operation " + e.Group + "." + e.Name
}
