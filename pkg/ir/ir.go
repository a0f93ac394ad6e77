// Package ir holds the intermediate model produced by adapting an OpenAPI
// document: the document header, its operations, and the closed set of type
// shapes every schema node is classified into.
package ir

// TypeKind identifies the variant of a TypeNode. The set is closed: every
// schema node classifies to exactly one kind.
type TypeKind string

const (
	KindBoolean    TypeKind = "boolean"
	KindInt32      TypeKind = "int32"
	KindInt64      TypeKind = "int64"
	KindFloat      TypeKind = "float"
	KindDouble     TypeKind = "double"
	KindString     TypeKind = "string"
	KindDate       TypeKind = "date"
	KindDateTime   TypeKind = "date-time"
	KindFile       TypeKind = "file"
	KindBytes      TypeKind = "bytes"
	KindArray      TypeKind = "array"
	KindDictionary TypeKind = "dictionary"
	KindEnum       TypeKind = "enum"
	KindObject     TypeKind = "object"
)

// TypeNode is one node of the derived type model. Exactly one variant applies;
// the variant-specific fields are populated according to Kind:
//
//   - KindArray: Elem is the element type
//   - KindDictionary: Elem is the value type (keys are strings)
//   - KindEnum: EnumValues holds the allowed values
//   - KindObject: Properties holds the declared fields (possibly empty)
type TypeNode struct {
	Kind       TypeKind
	Elem       *TypeNode
	EnumValues []string
	Properties []Property
}

// Property is a named field of an object type. Required reflects the declaring
// schema's required-name list, not the property node itself.
type Property struct {
	Name        string
	Description string
	Required    bool
	Type        TypeNode
}

// ParamLocation says where a parameter is carried in the request.
type ParamLocation string

const (
	InPath     ParamLocation = "path"
	InQuery    ParamLocation = "query"
	InHeader   ParamLocation = "header"
	InBody     ParamLocation = "body"
	InFormData ParamLocation = "formData"
)

// CollectionFormat is the textual join strategy for array-valued parameters.
type CollectionFormat string

const (
	CollectionCSV   CollectionFormat = "csv"
	CollectionSSV   CollectionFormat = "ssv"
	CollectionTSV   CollectionFormat = "tsv"
	CollectionPipes CollectionFormat = "pipes"
	CollectionMulti CollectionFormat = "multi"
)

// Parameter is one declared input of an operation.
type Parameter struct {
	Name             string
	Description      string
	Location         ParamLocation
	Required         bool
	CollectionFormat CollectionFormat
	Type             TypeNode
}

// Response pairs a status code with the type of its body, if any.
// StatusCode 0 marks the default (code-absent) response.
type Response struct {
	StatusCode  int
	Type        *TypeNode
	Description string
}

// Operation is one HTTP method bound to one path template.
type Operation struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Deprecated  bool
	// Tags as declared; the first one determines grouping, the rest are
	// carried along.
	Tags       []string
	Consumes   []string
	Produces   []string
	Parameters []Parameter
	Responses  []Response
}

// Definition is a named schema from the document's components table.
type Definition struct {
	Name string
	Type TypeNode
}

// Info is the document header.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Tag is a declared operation group with its description.
type Tag struct {
	Name        string
	Description string
}

// Document is the normalized form of one API description. It is built once by
// the document adapter and never mutated afterwards.
type Document struct {
	Info     Info
	Host     string
	BasePath string
	// Schemes in declared order; may be empty, in which case request
	// construction falls back to "http".
	Schemes     []string
	Operations  []Operation
	Definitions []Definition
	Tags        []Tag
}
