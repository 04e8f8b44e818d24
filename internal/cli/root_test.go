package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadRequestDocYAML(t *testing.T) {
	path := writeTempFile(t, "req.yaml", "method: POST\nurl: https://api.example.com/users\n")

	doc, err := readRequestDoc(path)
	if err != nil {
		t.Fatalf("readRequestDoc: %v", err)
	}
	if doc.Method != "POST" || doc.URL != "https://api.example.com/users" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestReadRequestDocJSON(t *testing.T) {
	path := writeTempFile(t, "req.json", `{"method":"PUT","url":"https://api.example.com/users/7"}`)

	doc, err := readRequestDoc(path)
	if err != nil {
		t.Fatalf("readRequestDoc: %v", err)
	}
	if doc.Method != "PUT" {
		t.Errorf("method = %q", doc.Method)
	}
}

func TestReadRequestDocMissingFile(t *testing.T) {
	if _, err := readRequestDoc(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
