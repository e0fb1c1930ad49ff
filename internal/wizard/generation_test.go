package wizard

import (
	"os"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func sampleEnv() EnvironmentInput {
	return EnvironmentInput{
		Name:         "local",
		DriverID:     "postgres",
		DatabaseURL:  "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		DatabaseName: "northwind",
		SeedPath:     "northwind.sql",
		OutputPath:   ".env",
	}
}

func TestGenerateFilesCreatesConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	result, err := GenerateFiles(sampleEnv(), false)
	if err != nil {
		t.Fatalf("GenerateFiles returned error: %v", err)
	}
	if !result.ConfigCreated {
		t.Fatal("Expected config to be reported as created")
	}

	data, err := os.ReadFile("seedctl.toml")
	if err != nil {
		t.Fatalf("Failed to read seedctl.toml: %v", err)
	}

	var config tomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		t.Fatalf("Failed to parse generated TOML: %v", err)
	}
	if config.DefaultEnvironment != "local" {
		t.Fatalf("Expected default environment local, got %q", config.DefaultEnvironment)
	}
	env, ok := config.Environments["local"]
	if !ok {
		t.Fatal("Expected local environment in generated config")
	}
	if env.DatabaseName != "northwind" {
		t.Fatalf("Expected database name northwind, got %q", env.DatabaseName)
	}
}

func TestGenerateFilesRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := GenerateFiles(sampleEnv(), false); err != nil {
		t.Fatalf("First GenerateFiles returned error: %v", err)
	}
	if _, err := GenerateFiles(sampleEnv(), false); err == nil {
		t.Fatal("Expected error overwriting without force, got nil")
	}

	result, err := GenerateFiles(sampleEnv(), true)
	if err != nil {
		t.Fatalf("GenerateFiles with force returned error: %v", err)
	}
	if !result.ConfigUpdated {
		t.Fatal("Expected config to be reported as updated")
	}
}

func TestGenerateFilesUpdatesGitignore(t *testing.T) {
	t.Chdir(t.TempDir())

	result, err := GenerateFiles(sampleEnv(), false)
	if err != nil {
		t.Fatalf("GenerateFiles returned error: %v", err)
	}
	if !result.GitignoreUpdated {
		t.Fatal("Expected .gitignore to be updated")
	}

	data, err := os.ReadFile(".gitignore")
	if err != nil {
		t.Fatalf("Failed to read .gitignore: %v", err)
	}
	if !strings.Contains(string(data), ".env.*") {
		t.Fatalf("Expected .env.* entry, got: %s", data)
	}

	// A second run must not duplicate entries.
	result, err = GenerateFiles(sampleEnv(), true)
	if err != nil {
		t.Fatalf("Second GenerateFiles returned error: %v", err)
	}
	if result.GitignoreUpdated {
		t.Fatal("Expected no further .gitignore changes")
	}
}

func TestUpdateGitignorePreservesExistingContent(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile(".gitignore", []byte("bin/\n"), 0o644); err != nil {
		t.Fatalf("Failed to seed .gitignore: %v", err)
	}

	if _, err := updateGitignore(".env"); err != nil {
		t.Fatalf("updateGitignore returned error: %v", err)
	}

	data, err := os.ReadFile(".gitignore")
	if err != nil {
		t.Fatalf("Failed to read .gitignore: %v", err)
	}
	if !strings.Contains(string(data), "bin/") {
		t.Fatal("Expected existing entries preserved")
	}
}
