// Package binder executes compiled operations: it routes bound argument
// values into path, query, header, and payload slots, issues the HTTP
// request, and decodes the response into the operation's return type.
package binder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/restbind-dev/restbind/pkg/compiler"
	"github.com/restbind-dev/restbind/pkg/ir"
)

// Header is one ordered header pair. Default headers keep their configured
// order and precede any headers contributed by parameters.
type Header struct {
	Name  string
	Value string
}

// Args binds parameter names to concrete values for one invocation.
type Args map[string]any

// Option configures a Binder.
type Option func(*Binder)

// WithHTTPClient sets the HTTP client used for round trips. Timeouts,
// pooling, and retry policy all belong to this client, not the binder.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Binder) { b.client = c }
}

// WithDefaultHeaders sets the ordered header pairs merged into every request.
func WithDefaultHeaders(headers []Header) Option {
	return func(b *Binder) { b.headers = append([]Header(nil), headers...) }
}

// WithBaseURL overrides the base address derived from the document.
func WithBaseURL(base string) Option {
	return func(b *Binder) { b.baseURL = strings.TrimSuffix(base, "/") }
}

// Binder issues requests for one adapted document. It is immutable after
// construction; Invoke is safe for concurrent use.
type Binder struct {
	doc     ir.Document
	client  *http.Client
	headers []Header
	baseURL string
}

// New creates a Binder for doc with the given configuration.
func New(doc ir.Document, opts ...Option) *Binder {
	b := &Binder{doc: doc, client: http.DefaultClient}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Invoke executes one compiled operation with the given arguments and decodes
// the response body. The decoded value is nil when the operation's return
// type is void. Exactly one round trip is performed; failures propagate to
// the caller without retry.
func (b *Binder) Invoke(ctx context.Context, op compiler.CompiledOperation, args Args) (any, error) {
	var out any
	if op.ReturnType == nil {
		return nil, b.InvokeInto(ctx, op, args, nil)
	}
	if err := b.InvokeInto(ctx, op, args, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InvokeInto executes one compiled operation and decodes the response body
// into out. Pass a nil out to discard the body.
func (b *Binder) InvokeInto(ctx context.Context, op compiler.CompiledOperation, args Args, out any) error {
	req, err := b.buildRequest(ctx, op, args)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return &TransportError{Method: op.Method, URL: req.URL.String(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: op.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode >= 400 {
		return &TransportError{Method: op.Method, URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	if op.ReturnType == nil || out == nil || len(body) == 0 {
		return nil
	}
	if err := unmarshalResponse(body, out); err != nil {
		return &DecodeError{Cause: err}
	}
	return nil
}

// requestPlan accumulates the partitioned request parts before composition.
type requestPlan struct {
	path    string
	query   []Header
	headers []Header
	form    []Header
	body    any
	hasBody bool
}

func (b *Binder) buildRequest(ctx context.Context, op compiler.CompiledOperation, args Args) (*http.Request, error) {
	plan := requestPlan{
		path:    op.PathTemplate,
		headers: append([]Header(nil), b.headers...),
	}

	declared := map[string]bool{}
	for _, p := range op.Parameters {
		declared[p.Name] = true
		value, bound := args[p.Name]
		if !bound {
			if p.Required {
				return nil, &MissingArgumentError{Parameter: p.Name}
			}
			continue
		}
		if err := plan.route(p, value); err != nil {
			return nil, err
		}
	}
	for name := range args {
		if !declared[name] {
			return nil, &UnknownArgumentError{Argument: name}
		}
	}

	target := b.composeURL(plan.path)
	if len(plan.query) > 0 {
		target += "?" + encodePairs(plan.query)
	}

	var reader io.Reader
	contentType := ""
	switch {
	case plan.hasBody:
		data, err := marshalPayload(plan.body)
		if err != nil {
			return nil, fmt.Errorf("serialize request body: %w", err)
		}
		reader = strings.NewReader(string(data))
		contentType = "application/json"
	case len(plan.form) > 0:
		reader = strings.NewReader(encodePairs(plan.form))
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, target, reader)
	if err != nil {
		return nil, err
	}
	for _, h := range plan.headers {
		req.Header.Add(h.Name, h.Value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Some servers reject POSTs that carry neither a body nor an explicit
	// zero content length.
	if op.Method == http.MethodPost && reader == nil {
		req.Body = http.NoBody
		req.ContentLength = 0
	}
	return req, nil
}

// route places one bound (parameter, value) pair into its request slot.
func (p *requestPlan) route(param compiler.CompiledParam, value any) error {
	switch param.Location {
	case ir.InPath:
		p.path = strings.ReplaceAll(p.path, "{"+param.Name+"}", coerceValue(value, param.Type, param.CollectionFormat))
	case ir.InQuery:
		p.query = append(p.query, pairsFor(param, value)...)
	case ir.InHeader:
		p.headers = append(p.headers, Header{param.Name, coerceValue(value, param.Type, param.CollectionFormat)})
	case ir.InFormData:
		if p.hasBody {
			return &compiler.AmbiguousPayloadError{Parameters: []string{param.Name}}
		}
		p.form = append(p.form, pairsFor(param, value)...)
	case ir.InBody:
		if p.hasBody || len(p.form) > 0 {
			return &compiler.AmbiguousPayloadError{Parameters: []string{param.Name}}
		}
		p.body = value
		p.hasBody = true
	default:
		return fmt.Errorf("parameter %q: unknown location %q", param.Name, param.Location)
	}
	return nil
}

// composeURL builds scheme://host+basePath+path, defaulting the scheme to
// "http" when the document declares none.
func (b *Binder) composeURL(path string) string {
	if b.baseURL != "" {
		return b.baseURL + path
	}
	scheme := "http"
	if len(b.doc.Schemes) > 0 {
		scheme = b.doc.Schemes[0]
	}
	return scheme + "://" + b.doc.Host + b.doc.BasePath + path
}

// collectionSeparators maps the textual join strategies to their separator.
// Multi never reaches the join; pairsFor expands it into repeated pairs.
var collectionSeparators = map[ir.CollectionFormat]string{
	ir.CollectionCSV:   ",",
	ir.CollectionSSV:   " ",
	ir.CollectionTSV:   "\t",
	ir.CollectionPipes: "|",
}

// pairsFor expands one bound query or form parameter into its pairs: a
// multi-format array contributes one pair per element, everything else one
// coerced pair.
func pairsFor(param compiler.CompiledParam, value any) []Header {
	if param.CollectionFormat == ir.CollectionMulti && joinableArray(param.Type) {
		elems := stringSlice(value)
		out := make([]Header, len(elems))
		for i, e := range elems {
			out[i] = Header{param.Name, e}
		}
		return out
	}
	return []Header{{param.Name, coerceValue(value, param.Type, param.CollectionFormat)}}
}

// coerceValue produces the textual form of a bound value. Arrays of strings
// or enums join with the format's separator after every element, including
// the last; the trailing separator matches the original binding layer and is
// preserved.
func coerceValue(v any, t ir.TypeNode, format ir.CollectionFormat) string {
	if joinableArray(t) {
		sep, ok := collectionSeparators[format]
		if !ok {
			sep = ","
		}
		var sb strings.Builder
		for _, e := range stringSlice(v) {
			sb.WriteString(e)
			sb.WriteString(sep)
		}
		return sb.String()
	}
	return fmt.Sprint(v)
}

func joinableArray(t ir.TypeNode) bool {
	return t.Kind == ir.KindArray && t.Elem != nil &&
		(t.Elem.Kind == ir.KindString || t.Elem.Kind == ir.KindEnum)
}

func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, len(vv))
		for i, e := range vv {
			out[i] = fmt.Sprint(e)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// encodePairs URL-encodes pairs preserving their order, unlike url.Values
// which re-sorts by key.
func encodePairs(pairs []Header) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
