package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnvironmentName = "local"
	defaultDatabaseURL     = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	defaultDatabaseName    = "northwind"
	defaultSeedPath        = "northwind.sql"
	defaultOutputPath      = ".env"
	defaultMaxQueryResults = 100
)

// ResolvedEnvironment is a fully-resolved environment with concrete values
// for a provisioning run.
type ResolvedEnvironment struct {
	Name               string
	DatabaseURL        string
	DatabaseName       string
	SeedPath           string
	OutputPath         string
	GoogleAPIKey       string
	MaxQueryResults    int
	EnableQueryLogging bool
	DotenvPath         string
	FromConfig         bool
	FromDotenv         bool
}

// ResolveEnvironment resolves a named environment against seedctl.toml and an
// optional .env.<name> file. Dotenv values override TOML values; anything
// still unset falls back to built-in defaults matching the sample
// application's settings.
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = defaultEnvironmentName
		}
	}

	var (
		envConfig EnvironmentConfig
		envExists bool
	)
	if config != nil && config.Environments != nil {
		if cfg, ok := config.Environments[envName]; ok {
			envConfig = cfg
			envExists = true
		}
	}

	resolved := &ResolvedEnvironment{
		Name:               envName,
		DatabaseURL:        envConfig.DatabaseURL,
		DatabaseName:       envConfig.DatabaseName,
		SeedPath:           envConfig.SeedPath,
		OutputPath:         envConfig.OutputPath,
		GoogleAPIKey:       envConfig.GoogleAPIKey,
		MaxQueryResults:    envConfig.MaxQueryResults,
		EnableQueryLogging: true,
		FromConfig:         envExists,
	}
	if envConfig.EnableQueryLogging != nil {
		resolved.EnableQueryLogging = *envConfig.EnableQueryLogging
	}

	baseDir := ""
	if config != nil {
		baseDir = config.ConfigDir()
	}
	if baseDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			baseDir = cwd
		}
	}

	dotenvFileName := ".env." + envName
	if baseDir != "" {
		resolved.DotenvPath = filepath.Join(baseDir, dotenvFileName)
	} else {
		resolved.DotenvPath = dotenvFileName
	}

	if info, err := os.Stat(resolved.DotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(resolved.DotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolved.DotenvPath, err)
		}
		resolved.FromDotenv = true

		if value := values["DATABASE_URL"]; value != "" {
			resolved.DatabaseURL = value
		}
		if value := values["DB_NAME"]; value != "" {
			resolved.DatabaseName = value
		}
		if value := values["SEED_PATH"]; value != "" {
			resolved.SeedPath = value
		}
		if value := values["OUTPUT_PATH"]; value != "" {
			resolved.OutputPath = value
		}
		if value := values["GOOGLE_API_KEY"]; value != "" {
			resolved.GoogleAPIKey = value
		}
		if value := values["MAX_QUERY_RESULTS"]; value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid MAX_QUERY_RESULTS in %s: %q", resolved.DotenvPath, value)
			}
			resolved.MaxQueryResults = n
		}
		if value := values["ENABLE_QUERY_LOGGING"]; value != "" {
			resolved.EnableQueryLogging = strings.EqualFold(value, "true")
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access %s: %w", resolved.DotenvPath, err)
	}

	if resolved.DatabaseURL == "" {
		resolved.DatabaseURL = defaultDatabaseURL
	}
	if resolved.DatabaseName == "" {
		resolved.DatabaseName = defaultDatabaseName
	}
	if resolved.SeedPath == "" {
		resolved.SeedPath = defaultSeedPath
	}
	if resolved.OutputPath == "" {
		resolved.OutputPath = defaultOutputPath
	}
	if resolved.MaxQueryResults == 0 {
		resolved.MaxQueryResults = defaultMaxQueryResults
	}

	// Paths from seedctl.toml are relative to the config file's directory.
	if configDir := configDirOf(config); configDir != "" {
		resolved.SeedPath = resolvePath(resolved.SeedPath, configDir)
		resolved.OutputPath = resolvePath(resolved.OutputPath, configDir)
	}

	if config != nil && len(config.Environments) > 0 && !envExists && !resolved.FromDotenv {
		return nil, fmt.Errorf("environment %q not defined in seedctl.toml and %s not found", envName, resolved.DotenvPath)
	}

	return resolved, nil
}

func configDirOf(config *Config) string {
	if config == nil {
		return ""
	}
	return config.ConfigDir()
}

func resolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
