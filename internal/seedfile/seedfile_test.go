package seedfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Check(filepath.Join(t.TempDir(), "nope.sql")); err == nil {
		t.Fatal("Expected error for missing seed file, got nil")
	}
}

func TestCheckDirectory(t *testing.T) {
	t.Parallel()

	if _, err := Check(t.TempDir()); err == nil {
		t.Fatal("Expected error for directory seed path, got nil")
	}
}

func TestCheckReadsContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.sql")
	if err := os.WriteFile(path, []byte("SELECT 1;\n"), 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	content, err := Check(path)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if content != "SELECT 1;\n" {
		t.Fatalf("Expected file contents back, got %q", content)
	}
}

func TestLintValidScript(t *testing.T) {
	t.Parallel()

	script := `-- sample schema
CREATE TABLE categories (
    category_id SERIAL PRIMARY KEY,
    category_name VARCHAR(50) NOT NULL
);
INSERT INTO categories (category_name) VALUES ('Beverages');
`
	result := Lint("seed.sql", script)
	if !result.Valid {
		t.Fatalf("Expected valid script, got issues: %v", result.Issues)
	}
}

func TestLintReportsSyntaxErrorWithLine(t *testing.T) {
	t.Parallel()

	script := `CREATE TABLE ok (id SERIAL PRIMARY KEY);

CREATE TABEL broken (id SERIAL PRIMARY KEY);
`
	result := Lint("seed.sql", script)
	if result.Valid {
		t.Fatal("Expected invalid script")
	}
	if len(result.Issues) == 0 {
		t.Fatal("Expected at least one issue")
	}
	if result.Issues[0].Line != 3 {
		t.Fatalf("Expected issue on line 3, got %d", result.Issues[0].Line)
	}
}

func TestLintEmptyScript(t *testing.T) {
	t.Parallel()

	result := Lint("seed.sql", "  \n\t\n")
	if result.Valid {
		t.Fatal("Expected empty script to be invalid")
	}
}

func TestSplitIgnoresSemicolonsInStringsAndComments(t *testing.T) {
	t.Parallel()

	script := `INSERT INTO t (name) VALUES ('a;b');
-- trailing; comment
/* block; comment */
SELECT 1;`

	statements := Split(script)
	if len(statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %#v", len(statements), statements)
	}
	if statements[0].StartLine != 1 {
		t.Fatalf("Expected first statement to start on line 1, got %d", statements[0].StartLine)
	}
}

func TestSplitTracksStartLines(t *testing.T) {
	t.Parallel()

	script := "SELECT 1;\n\n\nSELECT 2;\n"
	statements := Split(script)
	if len(statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(statements))
	}
	if statements[1].StartLine != 4 {
		t.Fatalf("Expected second statement on line 4, got %d", statements[1].StartLine)
	}
}

func TestSplitFinalStatementWithoutSemicolon(t *testing.T) {
	t.Parallel()

	statements := Split("SELECT 1;\nSELECT 2")
	if len(statements) != 2 {
		t.Fatalf("Expected trailing statement without semicolon, got %d statements", len(statements))
	}
}
