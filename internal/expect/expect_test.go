package expect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseValidDocument(t *testing.T) {
	t.Parallel()

	doc := `{"tables": [{"name": "categories", "min_rows": 8}, {"name": "products"}]}`
	exp, err := Parse("expect.json", []byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(exp.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(exp.Tables))
	}
	if exp.Tables[0].Name != "categories" || exp.Tables[0].MinRows != 8 {
		t.Fatalf("Unexpected first expectation: %+v", exp.Tables[0])
	}
	if exp.Tables[1].MinRows != 0 {
		t.Fatalf("Expected min_rows to default to 0, got %d", exp.Tables[1].MinRows)
	}
}

func TestParseRejectsMissingTables(t *testing.T) {
	t.Parallel()

	if _, err := Parse("expect.json", []byte(`{}`)); err == nil {
		t.Fatal("Expected error for missing tables key, got nil")
	}
}

func TestParseRejectsEmptyTableName(t *testing.T) {
	t.Parallel()

	if _, err := Parse("expect.json", []byte(`{"tables": [{"name": ""}]}`)); err == nil {
		t.Fatal("Expected error for empty table name, got nil")
	}
}

func TestParseRejectsNegativeMinRows(t *testing.T) {
	t.Parallel()

	if _, err := Parse("expect.json", []byte(`{"tables": [{"name": "t", "min_rows": -1}]}`)); err == nil {
		t.Fatal("Expected error for negative min_rows, got nil")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	if _, err := Parse("expect.json", []byte(`{"tables": [{"name": "t"}], "rows": 5}`)); err == nil {
		t.Fatal("Expected error for unknown top-level key, got nil")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "expect.json")
	if err := os.WriteFile(path, []byte(`{"tables": [{"name": "orders"}]}`), 0o600); err != nil {
		t.Fatalf("Failed to write expectations file: %v", err)
	}

	exp, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(exp.Tables) != 1 || exp.Tables[0].Name != "orders" {
		t.Fatalf("Unexpected expectations: %+v", exp)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}
