package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/restbind-dev/restbind/pkg/ir"
	"github.com/restbind-dev/restbind/pkg/utils"
)

// RootGroup is the synthesized group key for operations with no tags.
const RootGroup = "Root"

// TypeCompiler turns a type-model node plus a required flag into the concrete
// type to use at a call site. It is an external collaborator; the operation
// compiler never inspects the result.
type TypeCompiler interface {
	CompileType(node ir.TypeNode, required bool) string
}

// CompiledParam is one entry of a compiled call signature.
type CompiledParam struct {
	ir.Parameter
	// ConcreteType is the collaborator-compiled type, empty when compiling
	// without a TypeCompiler.
	ConcreteType string
}

// CompiledOperation is the callable surface derived from one operation
// record: an ordered signature, a return type, and everything the request
// binder needs to build the call.
type CompiledOperation struct {
	Group        string
	Name         string
	Method       string
	PathTemplate string
	Summary      string
	Deprecated   bool
	// Parameters in signature order: required first, optional after, each
	// block keeping its declaration order.
	Parameters []CompiledParam
	// ReturnType is nil when the operation returns no value.
	ReturnType     *ir.TypeNode
	ReturnConcrete string
}

// CompiledGroup collects the compiled operations of one tag.
type CompiledGroup struct {
	Tag        string
	Operations []CompiledOperation
}

// Options controls a compilation pass.
type Options struct {
	// Types is the optional definition-compiler collaborator.
	Types TypeCompiler
	// IncludeTags and ExcludeTags are regex patterns filtering operations
	// by their declared tags.
	IncludeTags []string
	ExcludeTags []string
}

// Compile turns an adapted document into compiled operations grouped by tag.
// Groups are emitted in sorted tag order; within a group the document's
// operation order is preserved.
func Compile(doc ir.Document, opts Options) ([]CompiledGroup, error) {
	include, exclude, err := compileTagFilters(opts.IncludeTags, opts.ExcludeTags)
	if err != nil {
		return nil, err
	}

	groups := map[string]*CompiledGroup{}
	var order []string
	for _, op := range doc.Operations {
		if !includeOperation(op.Tags, include, exclude) {
			continue
		}
		compiled, err := CompileOperation(op, opts.Types)
		if err != nil {
			return nil, err
		}
		g, ok := groups[compiled.Group]
		if !ok {
			g = &CompiledGroup{Tag: compiled.Group}
			groups[compiled.Group] = g
			order = append(order, compiled.Group)
		}
		g.Operations = append(g.Operations, compiled)
	}

	sort.Strings(order)
	out := make([]CompiledGroup, 0, len(order))
	for _, tag := range order {
		out = append(out, *groups[tag])
	}
	return out, nil
}

// CompileOperation derives the callable signature for one operation record.
func CompileOperation(op ir.Operation, types TypeCompiler) (CompiledOperation, error) {
	if err := checkPayload(op); err != nil {
		return CompiledOperation{}, err
	}

	group := GroupKey(op)
	compiled := CompiledOperation{
		Group:        group,
		Name:         methodName(group, op),
		Method:       op.Method,
		PathTemplate: op.Path,
		Summary:      op.Summary,
		Deprecated:   op.Deprecated,
		ReturnType:   selectReturnType(op.Responses),
	}

	// Required parameters first, optional after; both blocks keep their
	// declaration order.
	for _, p := range op.Parameters {
		if p.Required {
			compiled.Parameters = append(compiled.Parameters, compileParam(p, types))
		}
	}
	for _, p := range op.Parameters {
		if !p.Required {
			compiled.Parameters = append(compiled.Parameters, compileParam(p, types))
		}
	}

	if types != nil && compiled.ReturnType != nil {
		compiled.ReturnConcrete = types.CompileType(*compiled.ReturnType, true)
	}
	return compiled, nil
}

// GroupKey returns the operation's first declared tag, or RootGroup when the
// operation carries none.
func GroupKey(op ir.Operation) string {
	if len(op.Tags) == 0 || op.Tags[0] == "" {
		return RootGroup
	}
	return op.Tags[0]
}

func compileParam(p ir.Parameter, types TypeCompiler) CompiledParam {
	cp := CompiledParam{Parameter: p}
	if types != nil {
		cp.ConcreteType = types.CompileType(p.Type, p.Required)
	}
	return cp
}

// methodName derives the compiled name from the operation id: a "<tag>_"
// prefix (tag without its leading slash) is stripped, the remainder
// beautified to PascalCase. Operations without an id fall back to a
// method-plus-path name.
func methodName(group string, op ir.Operation) string {
	id := op.OperationID
	if id == "" {
		return utils.ToPascalCase(op.Method + " " + op.Path)
	}
	tag := strings.TrimPrefix(group, "/")
	if tag != "" && strings.HasPrefix(id, tag+"_") {
		id = id[len(tag)+1:]
	}
	return utils.ToPascalCase(id)
}

// selectReturnType scans the responses in order and picks the first entry
// whose code is exactly 200 or absent. This deliberately does not rank other
// 2xx codes; a 201-only operation compiles to its default response or void.
func selectReturnType(responses []ir.Response) *ir.TypeNode {
	for _, r := range responses {
		if r.StatusCode == 200 || r.StatusCode == 0 {
			return r.Type
		}
	}
	return nil
}

// checkPayload enforces payload exclusivity: at most one body parameter, and
// never a body alongside form fields. Multiple form fields are fine, they
// accumulate into the single form payload.
func checkPayload(op ir.Operation) error {
	var bodies, forms []string
	for _, p := range op.Parameters {
		switch p.Location {
		case ir.InBody:
			bodies = append(bodies, p.Name)
		case ir.InFormData:
			forms = append(forms, p.Name)
		}
	}
	if len(bodies) > 1 || (len(bodies) > 0 && len(forms) > 0) {
		return &AmbiguousPayloadError{
			Operation:  operationLabel(op),
			Parameters: append(bodies, forms...),
		}
	}
	return nil
}

func operationLabel(op ir.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return fmt.Sprintf("%s %s", op.Method, op.Path)
}

// compileTagFilters compiles regex patterns for tag filtering.
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// includeOperation applies include patterns first (any tag matching any
// pattern keeps the operation), then exclude patterns (any match drops it).
// Untagged operations are matched against the Root group key.
func includeOperation(tags []string, include, exclude []*regexp.Regexp) bool {
	if len(tags) == 0 {
		tags = []string{RootGroup}
	}
	if len(include) > 0 {
		matched := false
		for _, tag := range tags {
			for _, r := range include {
				if r.MatchString(tag) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, tag := range tags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}
