package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type tomlEnvironment struct {
	DatabaseURL  string `toml:"database_url"`
	DatabaseName string `toml:"database_name,omitempty"`
	SeedPath     string `toml:"seed_path,omitempty"`
	OutputPath   string `toml:"output_path,omitempty"`
}

type tomlConfig struct {
	DefaultEnvironment string                     `toml:"default_environment"`
	Environments       map[string]tomlEnvironment `toml:"environments"`
}

// GenerateFiles writes seedctl.toml for the collected environment and keeps
// generated env files out of version control.
func GenerateFiles(env EnvironmentInput, force bool) (*InitResult, error) {
	result := &InitResult{ConfigPath: "seedctl.toml"}

	if _, err := os.Stat(result.ConfigPath); err == nil {
		if !force {
			return nil, fmt.Errorf("%s already exists", result.ConfigPath)
		}
		result.ConfigUpdated = true
	} else {
		result.ConfigCreated = true
	}

	config := tomlConfig{
		DefaultEnvironment: env.Name,
		Environments: map[string]tomlEnvironment{
			env.Name: {
				DatabaseURL:  env.DatabaseURL,
				DatabaseName: env.DatabaseName,
				SeedPath:     env.SeedPath,
				OutputPath:   env.OutputPath,
			},
		},
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seedctl.toml: %w", err)
	}
	if err := os.WriteFile(result.ConfigPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write seedctl.toml: %w", err)
	}

	updated, err := updateGitignore(env.OutputPath)
	if err != nil {
		return nil, err
	}
	result.GitignoreUpdated = updated

	return result, nil
}

// updateGitignore makes sure the generated artifact and per-environment env
// files stay untracked. Entries already present are not duplicated.
func updateGitignore(outputPath string) (bool, error) {
	entries := []string{".env", ".env.*"}
	if outputPath != "" && outputPath != ".env" {
		entries = append(entries, outputPath)
	}

	existing := ""
	if data, err := os.ReadFile(".gitignore"); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	lines := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		lines[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range entries {
		if !lines[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n# seedctl generated files\n")
	for _, entry := range missing {
		b.WriteString(entry)
		b.WriteString("\n")
	}

	if err := os.WriteFile(".gitignore", []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return true, nil
}
