package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/seedctl/seedctl/internal/seedfile"
	"github.com/spf13/cobra"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a seed SQL file with the PostgreSQL parser",
	Long: `Validate a seed SQL file with the PostgreSQL parser.

Each statement is parsed; syntax errors are reported with line numbers. The
same check runs during 'seedctl provision' (advisory by default, fatal with
--strict-seed).`,
	Example: `  # Validate the sample seed file
  seedctl validate northwind.sql

  # JSON output for editor integration
  seedctl validate --format json northwind.sql`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format: text or json")
}

func runValidate(cmd *cobra.Command, args []string) {
	path := args[0]

	content, err := seedfile.Check(path)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	result := seedfile.Lint(path, content)

	if validateFormat == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal validation result: %v", err)
		}
		fmt.Println(string(data))
		if !result.Valid {
			os.Exit(1)
		}
		return
	}

	if result.Valid {
		fmt.Fprintf(os.Stderr, "✓ Seed file is valid: %s\n", path)
		return
	}

	fmt.Fprintf(os.Stderr, "✗ Seed file validation failed: %s\n\n", path)
	for _, issue := range result.Issues {
		fmt.Fprintf(os.Stderr, "%s:%d: %s: %s\n", issue.File, issue.Line, issue.Severity, issue.Message)
	}
	os.Exit(1)
}
