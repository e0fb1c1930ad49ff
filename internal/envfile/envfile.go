// Package envfile writes the configuration artifact consumed by the sample
// application. The file is line-oriented KEY=VALUE with comment headers, with
// a fixed key set and a stable key order across runs.
package envfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Artifact is the full set of values written to the output file.
type Artifact struct {
	GoogleAPIKey string

	Host     string
	Port     int
	Name     string
	User     string
	Password string

	MaxQueryResults    int
	EnableQueryLogging bool
}

const apiKeyPlaceholder = "your-google-api-key-here"

type section struct {
	comment string
	keys    []string
	values  map[string]string
}

// sections returns the artifact contents in emission order. Keys within a
// section are listed explicitly so the order never depends on map iteration.
func (a Artifact) sections() []section {
	apiKey := a.GoogleAPIKey
	if apiKey == "" {
		apiKey = apiKeyPlaceholder
	}

	return []section{
		{
			comment: "Google Gemini API (free tier available)",
			keys:    []string{"GOOGLE_API_KEY"},
			values:  map[string]string{"GOOGLE_API_KEY": apiKey},
		},
		{
			comment: "Database connection",
			keys:    []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD"},
			values: map[string]string{
				"DB_HOST":     a.Host,
				"DB_PORT":     strconv.Itoa(a.Port),
				"DB_NAME":     a.Name,
				"DB_USER":     a.User,
				"DB_PASSWORD": a.Password,
			},
		},
		{
			comment: "Application settings",
			keys:    []string{"MAX_QUERY_RESULTS", "ENABLE_QUERY_LOGGING"},
			values: map[string]string{
				"MAX_QUERY_RESULTS":    strconv.Itoa(a.MaxQueryResults),
				"ENABLE_QUERY_LOGGING": strconv.FormatBool(a.EnableQueryLogging),
			},
		},
	}
}

// Keys returns the fixed key set in emission order.
func Keys() []string {
	var keys []string
	for _, s := range (Artifact{}).sections() {
		keys = append(keys, s.keys...)
	}
	return keys
}

// Render serializes the artifact. Each value is encoded with the godotenv
// marshaller so quoting and escaping stay parseable by dotenv readers.
func (a Artifact) Render() (string, error) {
	var b strings.Builder
	b.WriteString("# Generated by seedctl. Do not commit this file.\n")

	for _, s := range a.sections() {
		b.WriteString("\n# ")
		b.WriteString(s.comment)
		b.WriteString("\n")
		for _, key := range s.keys {
			line, err := godotenv.Marshal(map[string]string{key: s.values[key]})
			if err != nil {
				return "", fmt.Errorf("failed to encode %s: %w", key, err)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// Write renders the artifact and writes it to path, unconditionally
// overwriting any existing file. The file is not world-readable because it
// carries the database password.
func (a Artifact) Write(path string) error {
	content, err := a.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
