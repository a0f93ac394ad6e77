package compiler

import (
	"errors"
	"testing"

	"github.com/restbind-dev/restbind/pkg/ir"
)

var (
	stringType = ir.TypeNode{Kind: ir.KindString}
	int64Type  = ir.TypeNode{Kind: ir.KindInt64}
	objectType = ir.TypeNode{Kind: ir.KindObject}
)

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected string
	}{
		{"no tags", nil, "Root"},
		{"empty first tag", []string{""}, "Root"},
		{"single tag", []string{"pets"}, "pets"},
		{"first tag wins", []string{"pets", "store", "user"}, "pets"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := GroupKey(ir.Operation{Tags: test.tags})
			if got != test.expected {
				t.Errorf("GroupKey = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestMethodName(t *testing.T) {
	tests := []struct {
		name        string
		tags        []string
		operationID string
		expected    string
	}{
		{"tag prefix stripped", []string{"pets"}, "pets_listPets", "ListPets"},
		{"no prefix beautified", []string{"pets"}, "listPets", "ListPets"},
		{"leading slash tag", []string{"/pets"}, "pets_listPets", "ListPets"},
		{"untagged", nil, "listPets", "ListPets"},
		{"snake id", []string{"store"}, "store_place_order", "PlaceOrder"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			op := ir.Operation{Tags: test.tags, OperationID: test.operationID, Method: "GET", Path: "/pets"}
			compiled, err := CompileOperation(op, nil)
			if err != nil {
				t.Fatalf("CompileOperation: %v", err)
			}
			if compiled.Name != test.expected {
				t.Errorf("Name = %q, expected %q", compiled.Name, test.expected)
			}
		})
	}
}

func TestMethodNameFallbackWithoutOperationID(t *testing.T) {
	op := ir.Operation{Method: "GET", Path: "/pets/{petId}"}
	compiled, err := CompileOperation(op, nil)
	if err != nil {
		t.Fatalf("CompileOperation: %v", err)
	}
	if compiled.Name != "GetPetsPetId" {
		t.Errorf("Name = %q, expected %q", compiled.Name, "GetPetsPetId")
	}
}

func TestRequiredParametersFirst(t *testing.T) {
	op := ir.Operation{
		OperationID: "listPets",
		Method:      "GET",
		Path:        "/pets",
		Parameters: []ir.Parameter{
			{Name: "limit", Location: ir.InQuery, Type: int64Type},
			{Name: "petId", Location: ir.InPath, Required: true, Type: int64Type},
			{Name: "filter", Location: ir.InQuery, Type: stringType},
			{Name: "apiKey", Location: ir.InHeader, Required: true, Type: stringType},
		},
	}
	compiled, err := CompileOperation(op, nil)
	if err != nil {
		t.Fatalf("CompileOperation: %v", err)
	}
	var names []string
	for _, p := range compiled.Parameters {
		names = append(names, p.Name)
	}
	expected := []string{"petId", "apiKey", "limit", "filter"}
	for i, n := range expected {
		if names[i] != n {
			t.Fatalf("parameter order = %v, expected %v", names, expected)
		}
	}
}

func TestSelectReturnType(t *testing.T) {
	t1 := ir.TypeNode{Kind: ir.KindString}
	t2 := ir.TypeNode{Kind: ir.KindInt64}
	t3 := ir.TypeNode{Kind: ir.KindBoolean}

	tests := []struct {
		name      string
		responses []ir.Response
		expected  *ir.TypeNode
	}{
		{
			"200 selected over earlier 201",
			[]ir.Response{{StatusCode: 201, Type: &t1}, {StatusCode: 200, Type: &t2}, {StatusCode: 0, Type: &t3}},
			&t2,
		},
		{
			"default selected when no 200",
			[]ir.Response{{StatusCode: 201, Type: &t1}, {StatusCode: 0, Type: &t3}},
			&t3,
		},
		{
			"no match means void",
			[]ir.Response{{StatusCode: 201, Type: &t1}, {StatusCode: 404, Type: &t1}},
			nil,
		},
		{
			"200 without body is void",
			[]ir.Response{{StatusCode: 200}},
			nil,
		},
		{"no responses", nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := selectReturnType(test.responses)
			if (got == nil) != (test.expected == nil) {
				t.Fatalf("got %v, expected %v", got, test.expected)
			}
			if got != nil && got.Kind != test.expected.Kind {
				t.Errorf("got kind %q, expected %q", got.Kind, test.expected.Kind)
			}
		})
	}
}

func TestCompileOperationAmbiguousPayload(t *testing.T) {
	tests := []struct {
		name   string
		params []ir.Parameter
		ok     bool
	}{
		{
			"body plus form",
			[]ir.Parameter{
				{Name: "body", Location: ir.InBody, Type: objectType},
				{Name: "file", Location: ir.InFormData, Type: stringType},
			},
			false,
		},
		{
			"two bodies",
			[]ir.Parameter{
				{Name: "a", Location: ir.InBody, Type: objectType},
				{Name: "b", Location: ir.InBody, Type: objectType},
			},
			false,
		},
		{
			"form fields accumulate",
			[]ir.Parameter{
				{Name: "name", Location: ir.InFormData, Type: stringType},
				{Name: "status", Location: ir.InFormData, Type: stringType},
			},
			true,
		},
		{
			"single body",
			[]ir.Parameter{{Name: "body", Location: ir.InBody, Type: objectType}},
			true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			op := ir.Operation{OperationID: "op", Method: "POST", Path: "/x", Parameters: test.params}
			_, err := CompileOperation(op, nil)
			if test.ok && err != nil {
				t.Fatalf("CompileOperation: %v", err)
			}
			if !test.ok && !errors.Is(err, ErrAmbiguousPayload) {
				t.Fatalf("expected ErrAmbiguousPayload, got %v", err)
			}
		})
	}
}

func TestCompileGroupsAndOrder(t *testing.T) {
	doc := ir.Document{
		Operations: []ir.Operation{
			{OperationID: "listPets", Method: "GET", Path: "/pets", Tags: []string{"pets"}},
			{OperationID: "ping", Method: "GET", Path: "/ping"},
			{OperationID: "createPet", Method: "POST", Path: "/pets", Tags: []string{"pets", "admin"}},
		},
	}
	groups, err := Compile(doc, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, expected 2", len(groups))
	}
	if groups[0].Tag != "Root" || groups[1].Tag != "pets" {
		t.Fatalf("group order = %q, %q", groups[0].Tag, groups[1].Tag)
	}
	if len(groups[1].Operations) != 2 ||
		groups[1].Operations[0].Name != "ListPets" ||
		groups[1].Operations[1].Name != "CreatePet" {
		t.Errorf("pets group lost document order: %+v", groups[1].Operations)
	}
}

func TestCompileTagFiltering(t *testing.T) {
	doc := ir.Document{
		Operations: []ir.Operation{
			{OperationID: "listPets", Method: "GET", Path: "/pets", Tags: []string{"pets"}},
			{OperationID: "adminReset", Method: "POST", Path: "/admin/reset", Tags: []string{"admin"}},
			{OperationID: "ping", Method: "GET", Path: "/ping"},
		},
	}

	groups, err := Compile(doc, Options{ExcludeTags: []string{"^admin$"}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, g := range groups {
		if g.Tag == "admin" {
			t.Fatal("admin group should have been excluded")
		}
	}

	groups, err = Compile(doc, Options{IncludeTags: []string{"^pets$"}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(groups) != 1 || groups[0].Tag != "pets" {
		t.Fatalf("include filter kept %+v, expected only pets", groups)
	}

	if _, err := Compile(doc, Options{IncludeTags: []string{"("}}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

type fakeTypes struct{}

func (fakeTypes) CompileType(node ir.TypeNode, required bool) string {
	if required {
		return string(node.Kind)
	}
	return string(node.Kind) + "?"
}

func TestCompileOperationUsesTypeCompiler(t *testing.T) {
	ret := ir.TypeNode{Kind: ir.KindObject}
	op := ir.Operation{
		OperationID: "getPet",
		Method:      "GET",
		Path:        "/pets/{petId}",
		Parameters: []ir.Parameter{
			{Name: "petId", Location: ir.InPath, Required: true, Type: int64Type},
			{Name: "verbose", Location: ir.InQuery, Type: ir.TypeNode{Kind: ir.KindBoolean}},
		},
		Responses: []ir.Response{{StatusCode: 200, Type: &ret}},
	}
	compiled, err := CompileOperation(op, fakeTypes{})
	if err != nil {
		t.Fatalf("CompileOperation: %v", err)
	}
	if compiled.Parameters[0].ConcreteType != "int64" {
		t.Errorf("petId concrete type = %q", compiled.Parameters[0].ConcreteType)
	}
	if compiled.Parameters[1].ConcreteType != "boolean?" {
		t.Errorf("verbose concrete type = %q", compiled.Parameters[1].ConcreteType)
	}
	if compiled.ReturnConcrete != "object" {
		t.Errorf("return concrete type = %q", compiled.ReturnConcrete)
	}
}
