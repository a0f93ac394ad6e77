// Package openapi wraps document loading so the rest of the module is
// agnostic to where a spec comes from (local file or URL) and to its wire
// format (JSON or YAML).
package openapi

import (
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadDocument loads an OpenAPI document from a local file path or an
// HTTP(S) URL, resolving references.
func LoadDocument(input string) (*openapi3.T, error) {
	doc, _, err := load(input)
	return doc, err
}

// ValidateDocument loads an OpenAPI document and checks it against the
// specification rules.
func ValidateDocument(input string) error {
	doc, loader, err := load(input)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

func load(input string) (*openapi3.T, *openapi3.Loader, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		doc, err := loader.LoadFromURI(u)
		return doc, loader, err
	}
	doc, err := loader.LoadFromFile(input)
	return doc, loader, err
}
