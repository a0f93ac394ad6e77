package compiler

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/restbind-dev/restbind/pkg/ir"
)

// supportedMethods is the closed set of HTTP methods the binder compiles, in
// the order operations of one path item are emitted.
var supportedMethods = []string{"GET", "POST", "PUT", "DELETE"}

// Adapt normalizes a parsed OpenAPI document into the intermediate model,
// classifying every schema it encounters. The input document is not modified.
func Adapt(doc *openapi3.T) (ir.Document, error) {
	out := ir.Document{}
	if doc.Info != nil {
		out.Info = ir.Info{
			Title:       doc.Info.Title,
			Version:     doc.Info.Version,
			Description: doc.Info.Description,
		}
	}
	out.Schemes, out.Host, out.BasePath = serverLocation(doc)

	ops, err := extractOperations(doc)
	if err != nil {
		return ir.Document{}, err
	}
	out.Operations = ops

	defs, err := adaptDefinitions(doc)
	if err != nil {
		return ir.Document{}, err
	}
	out.Definitions = defs

	for _, t := range doc.Tags {
		if t == nil {
			continue
		}
		out.Tags = append(out.Tags, ir.Tag{Name: t.Name, Description: t.Description})
	}
	return out, nil
}

// serverLocation derives scheme/host/basePath from the first declared server.
// A relative server URL contributes only a base path; a document with no
// servers yields empty values and the binder defaults the scheme later.
func serverLocation(doc *openapi3.T) (schemes []string, host, basePath string) {
	if len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return nil, "", ""
	}
	u, err := url.Parse(doc.Servers[0].URL)
	if err != nil {
		return nil, "", ""
	}
	if u.Scheme != "" && u.Host != "" {
		schemes = []string{u.Scheme}
		host = u.Host
	}
	if u.Path != "" && u.Path != "/" {
		basePath = u.Path
	}
	return schemes, host, basePath
}

func adaptDefinitions(doc *openapi3.T) ([]ir.Definition, error) {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]ir.Definition, 0, len(names))
	for _, name := range names {
		node, err := ClassifySchema(doc.Components.Schemas[name])
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", name, err)
		}
		defs = append(defs, ir.Definition{Name: name, Type: node})
	}
	return defs, nil
}

// extractOperations flattens the path map into operation records. Path maps
// are unordered in the parsed document, so paths are visited sorted and the
// methods of one path in supportedMethods order.
func extractOperations(doc *openapi3.T) ([]ir.Operation, error) {
	if doc.Paths == nil {
		return nil, nil
	}
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []ir.Operation
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		byMethod := map[string]*openapi3.Operation{
			"GET":    item.Get,
			"POST":   item.Post,
			"PUT":    item.Put,
			"DELETE": item.Delete,
		}
		for _, method := range supportedMethods {
			op := byMethod[method]
			if op == nil {
				continue
			}
			rec, err := extractOperation(method, path, op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			ops = append(ops, rec)
		}
	}
	return ops, nil
}

func extractOperation(method, path string, op *openapi3.Operation) (ir.Operation, error) {
	rec := ir.Operation{
		Method:      method,
		Path:        path,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        append([]string(nil), op.Tags...),
	}

	for _, pr := range op.Parameters {
		if pr == nil || pr.Value == nil {
			continue
		}
		param, ok, err := adaptParameter(pr.Value)
		if err != nil {
			return ir.Operation{}, fmt.Errorf("parameter %q: %w", pr.Value.Name, err)
		}
		if ok {
			rec.Parameters = append(rec.Parameters, param)
		}
	}

	payload, consumes, err := adaptRequestBody(op)
	if err != nil {
		return ir.Operation{}, err
	}
	rec.Parameters = append(rec.Parameters, payload...)
	rec.Consumes = consumes

	rec.Responses, rec.Produces, err = adaptResponses(op)
	if err != nil {
		return ir.Operation{}, err
	}
	return rec, nil
}

func adaptParameter(p *openapi3.Parameter) (ir.Parameter, bool, error) {
	var loc ir.ParamLocation
	switch p.In {
	case openapi3.ParameterInPath:
		loc = ir.InPath
	case openapi3.ParameterInQuery:
		loc = ir.InQuery
	case openapi3.ParameterInHeader:
		loc = ir.InHeader
	default:
		// Cookie parameters have no slot in the binding model.
		return ir.Parameter{}, false, nil
	}
	node, err := ClassifySchema(p.Schema)
	if err != nil {
		return ir.Parameter{}, false, err
	}
	return ir.Parameter{
		Name:             p.Name,
		Description:      p.Description,
		Location:         loc,
		Required:         p.Required,
		CollectionFormat: collectionFormat(p),
		Type:             node,
	}, true, nil
}

// collectionFormat maps the OpenAPI 3 style back onto the join strategies the
// binder serializes with. Comma-separated is the documented default.
func collectionFormat(p *openapi3.Parameter) ir.CollectionFormat {
	switch p.Style {
	case "spaceDelimited":
		return ir.CollectionSSV
	case "pipeDelimited":
		return ir.CollectionPipes
	}
	if p.Explode != nil && *p.Explode {
		return ir.CollectionMulti
	}
	return ir.CollectionCSV
}

// adaptRequestBody turns the operation's request body into payload-bearing
// parameters: one Body parameter for a JSON (or other raw) body, or one
// FormData parameter per top-level field of a form-encoded body.
func adaptRequestBody(op *openapi3.Operation) ([]ir.Parameter, []string, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, nil, nil
	}
	rb := op.RequestBody.Value
	consumes := sortedKeys(rb.Content)

	if media, ok := rb.Content["application/x-www-form-urlencoded"]; ok {
		node, err := ClassifySchema(media.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("form body: %w", err)
		}
		params := make([]ir.Parameter, 0, len(node.Properties))
		for _, prop := range node.Properties {
			params = append(params, ir.Parameter{
				Name:        prop.Name,
				Description: prop.Description,
				Location:    ir.InFormData,
				Required:    prop.Required,
				Type:        prop.Type,
			})
		}
		return params, consumes, nil
	}

	media, ok := rb.Content["application/json"]
	if !ok {
		for _, m := range rb.Content {
			media = m
			break
		}
	}
	if media == nil {
		return nil, consumes, nil
	}
	node, err := ClassifySchema(media.Schema)
	if err != nil {
		return nil, nil, fmt.Errorf("request body: %w", err)
	}
	return []ir.Parameter{{
		Name:     "body",
		Location: ir.InBody,
		Required: rb.Required,
		Type:     node,
	}}, consumes, nil
}

// adaptResponses collects (status, type) pairs ordered by ascending status
// code with the default response last, and aggregates the produced media
// types across all responses.
func adaptResponses(op *openapi3.Operation) ([]ir.Response, []string, error) {
	if op.Responses == nil {
		return nil, nil, nil
	}
	respMap := op.Responses.Map()
	codes := make([]string, 0, len(respMap))
	for code := range respMap {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, aerr := strconv.Atoi(codes[i])
		b, berr := strconv.Atoi(codes[j])
		if aerr != nil {
			return false
		}
		if berr != nil {
			return true
		}
		return a < b
	})

	var (
		out      []ir.Response
		produced = map[string]struct{}{}
	)
	for _, code := range codes {
		rr := respMap[code]
		if rr == nil || rr.Value == nil {
			continue
		}
		status, err := strconv.Atoi(code)
		if err != nil {
			status = 0 // default response
		}
		resp := ir.Response{StatusCode: status}
		if rr.Value.Description != nil {
			resp.Description = *rr.Value.Description
		}
		for ct := range rr.Value.Content {
			produced[ct] = struct{}{}
		}
		if media, ok := rr.Value.Content["application/json"]; ok && media.Schema != nil {
			node, err := ClassifySchema(media.Schema)
			if err != nil {
				return nil, nil, fmt.Errorf("response %s: %w", code, err)
			}
			resp.Type = &node
		}
		out = append(out, resp)
	}

	produces := make([]string, 0, len(produced))
	for ct := range produced {
		produces = append(produces, ct)
	}
	sort.Strings(produces)
	return out, produces, nil
}

func sortedKeys(m map[string]*openapi3.MediaType) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
