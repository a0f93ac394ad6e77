package openapi

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDocument(t *testing.T) {
	path := writeDoc(t, `{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {}}`)
	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Info == nil || doc.Info.Title != "t" {
		t.Errorf("info: %+v", doc.Info)
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateDocument(t *testing.T) {
	good := writeDoc(t, `{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {}}`)
	if err := ValidateDocument(good); err != nil {
		t.Errorf("ValidateDocument: %v", err)
	}

	// Missing info.version fails validation, not loading.
	bad := writeDoc(t, `{"openapi": "3.0.0", "info": {"title": "t"}, "paths": {}}`)
	if err := ValidateDocument(bad); err == nil {
		t.Fatal("expected validation error")
	}
}
