package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func sampleArtifact() Artifact {
	return Artifact{
		Host:               "localhost",
		Port:               5432,
		Name:               "northwind",
		User:               "postgres",
		Password:           "s3cret",
		MaxQueryResults:    100,
		EnableQueryLogging: true,
	}
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := sampleArtifact().Write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Failed to read written artifact: %v", err)
	}

	expected := map[string]string{
		"GOOGLE_API_KEY":       "your-google-api-key-here",
		"DB_HOST":              "localhost",
		"DB_PORT":              "5432",
		"DB_NAME":              "northwind",
		"DB_USER":              "postgres",
		"DB_PASSWORD":          "s3cret",
		"MAX_QUERY_RESULTS":    "100",
		"ENABLE_QUERY_LOGGING": "true",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected exactly %d keys, got %d: %v", len(expected), len(values), values)
	}
	for key, want := range expected {
		if values[key] != want {
			t.Fatalf("Expected %s=%q, got %q", key, want, values[key])
		}
	}
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STALE=1\n"), 0o600); err != nil {
		t.Fatalf("Failed to seed existing file: %v", err)
	}

	if err := sampleArtifact().Write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Failed to read written artifact: %v", err)
	}
	if _, ok := values["STALE"]; ok {
		t.Fatal("Expected previous file contents to be replaced")
	}
}

func TestRenderStableOrder(t *testing.T) {
	t.Parallel()

	first, err := sampleArtifact().Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	second, err := sampleArtifact().Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if first != second {
		t.Fatal("Expected identical output across renders")
	}

	// Key order must follow the fixed emission order.
	var positions []int
	for _, key := range Keys() {
		idx := strings.Index(first, key+"=")
		if idx < 0 {
			t.Fatalf("Expected key %s in output", key)
		}
		positions = append(positions, idx)
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			t.Fatalf("Expected %s after %s in output", Keys()[i], Keys()[i-1])
		}
	}
}

func TestRenderQuotesAwkwardValues(t *testing.T) {
	t.Parallel()

	a := sampleArtifact()
	a.Password = `p#ss "word" \n`

	path := filepath.Join(t.TempDir(), ".env")
	if err := a.Write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Failed to read written artifact: %v", err)
	}
	if values["DB_PASSWORD"] != a.Password {
		t.Fatalf("Expected password to survive quoting, got %q", values["DB_PASSWORD"])
	}
}

func TestArtifactFilePermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := sampleArtifact().Write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat artifact: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Fatalf("Expected artifact not to be group/world readable, got %v", perm)
	}
}
