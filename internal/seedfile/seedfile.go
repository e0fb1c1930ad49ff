// Package seedfile checks and lints the seed SQL script applied to a freshly
// created database.
package seedfile

import (
	"fmt"
	"os"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Issue is a single lint finding in a seed script.
type Issue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
}

// Result aggregates issues for one seed file.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Check verifies that the seed file exists and is a regular file, returning
// its contents. This runs before any network call is attempted.
func Check(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("seed file not found: %s", path)
		}
		return "", fmt.Errorf("failed to access seed file %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("seed path is a directory: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return string(content), nil
}

// Lint parses the script with the PostgreSQL parser. A clean full-file parse
// returns no issues; otherwise the script is split into statements so every
// syntax error is reported with its line number.
func Lint(path, content string) Result {
	if strings.TrimSpace(content) == "" {
		return Result{Valid: false, Issues: []Issue{{
			File:     path,
			Line:     1,
			Severity: "error",
			Message:  "seed file is empty",
		}}}
	}

	if _, err := pg_query.Parse(content); err == nil {
		return Result{Valid: true}
	}

	var issues []Issue
	for _, stmt := range Split(content) {
		trimmed := strings.TrimSpace(stmt.SQL)
		if trimmed == "" || isCommentOnly(trimmed) {
			continue
		}
		if _, err := pg_query.Parse(stmt.SQL); err != nil {
			issues = append(issues, Issue{
				File:     path,
				Line:     stmt.StartLine,
				Severity: "error",
				Message:  strings.TrimSpace(err.Error()),
			})
		}
	}

	if len(issues) == 0 {
		// Full parse failed but every statement parsed alone; report once.
		issues = append(issues, Issue{
			File:     path,
			Line:     1,
			Severity: "error",
			Message:  "seed file failed to parse as a whole",
		})
	}
	return Result{Valid: false, Issues: issues}
}

func isCommentOnly(sql string) bool {
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return false
		}
	}
	return true
}

// Statement is a single SQL statement with its position in the source file.
type Statement struct {
	SQL       string
	StartLine int
}

// Split divides a script into statements on semicolons, ignoring semicolons
// inside string literals, quoted identifiers, and comments. Line numbers are
// preserved for error reporting.
func Split(sql string) []Statement {
	var statements []Statement
	var current strings.Builder
	currentLine := 1
	stmtStartLine := 1
	seenContent := false

	inSingleQuote := false
	inDoubleQuote := false
	inLineComment := false
	inBlockComment := false

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\n' {
			currentLine++
			inLineComment = false
		}

		if !inSingleQuote && !inDoubleQuote {
			if !inBlockComment && i+1 < len(runes) && ch == '-' && runes[i+1] == '-' {
				inLineComment = true
			}
			if !inLineComment && i+1 < len(runes) && ch == '/' && runes[i+1] == '*' {
				inBlockComment = true
			}
			if inBlockComment && i+1 < len(runes) && ch == '*' && runes[i+1] == '/' {
				inBlockComment = false
				current.WriteRune(ch)
				i++
				current.WriteRune(runes[i])
				continue
			}
		}

		if !inLineComment && !inBlockComment {
			if ch == '\'' && (i == 0 || runes[i-1] != '\\') {
				inSingleQuote = !inSingleQuote
			}
			if ch == '"' && (i == 0 || runes[i-1] != '\\') {
				inDoubleQuote = !inDoubleQuote
			}
		}

		if ch == ';' && !inSingleQuote && !inDoubleQuote && !inLineComment && !inBlockComment {
			current.WriteRune(ch)
			statements = append(statements, Statement{
				SQL:       current.String(),
				StartLine: stmtStartLine,
			})
			current.Reset()
			seenContent = false
			continue
		}

		if !seenContent && !inLineComment && !inBlockComment {
			if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
				stmtStartLine = currentLine
				seenContent = true
			}
		}

		current.WriteRune(ch)
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, Statement{
			SQL:       current.String(),
			StartLine: stmtStartLine,
		})
	}

	return statements
}
