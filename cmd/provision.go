package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/seedctl/seedctl/internal/config"
	"github.com/seedctl/seedctl/internal/expect"
	"github.com/seedctl/seedctl/internal/provision"
	"github.com/seedctl/seedctl/internal/secret"
	"github.com/spf13/cobra"
)

var (
	provisionDB            string
	provisionEnv           string
	provisionName          string
	provisionSeed          string
	provisionOutput        string
	provisionPasswordEnv   string
	provisionPasswordStdin bool
	provisionExpect        string
	provisionStrictSeed    bool
	provisionOutputJSON    bool
	provisionVerbose       bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create and seed the sample database, then write the app config file",
	Long: `Create and seed the sample database, then write the app config file.

The target is resolved from (in priority order) the --db flag, the selected
environment in seedctl.toml / .env.<environment>, or built-in defaults
(postgres on localhost, database "northwind").

The sequence is fixed: resolve driver, check the seed file, collect the
administrative password, test connectivity, drop and recreate the database,
load the seed script, verify table counts, and write the configuration file.
The first failing step aborts the run; dropping the old database and loading
the seed are best-effort and only produce warnings.`,
	Example: `  # Provision using seedctl.toml defaults, prompting for the password
  seedctl provision

  # Provision a specific server and database
  seedctl provision --db postgres://postgres@localhost:5432/postgres --name northwind

  # Non-interactive password
  PGPASSWORD=secret seedctl provision --password-env PGPASSWORD

  # Check seed results against expectations
  seedctl provision --expect northwind.expect.json`,
	Run: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVar(&provisionDB, "db", "", "Database connection string (overrides environment selection)")
	provisionCmd.Flags().StringVar(&provisionEnv, "environment", "", "Named environment from seedctl.toml (defaults to config default)")
	provisionCmd.Flags().StringVar(&provisionName, "name", "", "Target database name (overrides environment)")
	provisionCmd.Flags().StringVar(&provisionSeed, "seed", "", "Seed SQL file path (overrides environment)")
	provisionCmd.Flags().StringVar(&provisionOutput, "output", "", "Output config file path (overrides environment)")
	provisionCmd.Flags().StringVar(&provisionPasswordEnv, "password-env", "", "Read the admin password from this environment variable")
	provisionCmd.Flags().BoolVar(&provisionPasswordStdin, "password-stdin", false, "Read the admin password from standard input")
	provisionCmd.Flags().StringVar(&provisionExpect, "expect", "", "Expectations JSON file checked during the verify step")
	provisionCmd.Flags().BoolVar(&provisionStrictSeed, "strict-seed", false, "Abort when the seed file fails SQL validation")
	provisionCmd.Flags().BoolVar(&provisionOutputJSON, "json", false, "Print the run outcome as JSON")
	provisionCmd.Flags().BoolVarP(&provisionVerbose, "verbose", "v", false, "Enable verbose output")
}

func runProvision(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	env, err := config.ResolveEnvironment(cfg, provisionEnv)
	if err != nil {
		log.Fatalf("Failed to resolve environment: %v", err)
	}

	runCfg := provision.Config{
		DatabaseURL:        env.DatabaseURL,
		DatabaseName:       env.DatabaseName,
		SeedPath:           env.SeedPath,
		OutputPath:         env.OutputPath,
		GoogleAPIKey:       env.GoogleAPIKey,
		MaxQueryResults:    env.MaxQueryResults,
		EnableQueryLogging: env.EnableQueryLogging,
		StrictSeed:         provisionStrictSeed,
	}
	if s := strings.TrimSpace(provisionDB); s != "" {
		runCfg.DatabaseURL = s
	}
	if s := strings.TrimSpace(provisionName); s != "" {
		runCfg.DatabaseName = s
	}
	if s := strings.TrimSpace(provisionSeed); s != "" {
		runCfg.SeedPath = s
	}
	if s := strings.TrimSpace(provisionOutput); s != "" {
		runCfg.OutputPath = s
	}

	if provisionExpect != "" {
		expectations, err := expect.Load(provisionExpect)
		if err != nil {
			log.Fatalf("Failed to load expectations: %v", err)
		}
		runCfg.Expectations = expectations
	}

	if provisionVerbose {
		fmt.Fprintf(os.Stderr, "Provisioning %s on %s\n",
			runCfg.DatabaseName, provision.RedactURL(runCfg.DatabaseURL))
	}

	opts := provision.Options{
		Credential: credentialSource(runCfg.DatabaseName),
	}
	if !provisionOutputJSON {
		opts.OnStep = printStep
	}

	outcome := provision.Run(context.Background(), runCfg, opts)

	if provisionOutputJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal outcome: %v", err)
		}
		fmt.Println(string(data))
		os.Exit(outcome.ExitCode())
	}

	for _, warning := range outcome.Warnings {
		_, _ = color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ %s\n", warning)
	}

	if !outcome.Success {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s failed: %s\n",
			outcome.FailedStep, outcome.Diagnostic)
		os.Exit(outcome.ExitCode())
	}

	_, _ = color.New(color.FgGreen).Fprintf(os.Stderr,
		"✓ Database %s ready: %d tables\n", runCfg.DatabaseName, outcome.TableCount)
	fmt.Fprintf(os.Stderr, "Configuration written to %s\n", outcome.ArtifactPath)
}

func printStep(result provision.StepResult) {
	if result.OK {
		detail := ""
		if result.Detail != "" {
			detail = " (" + result.Detail + ")"
		}
		_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "✓ %s%s\n", result.Name, detail)
		return
	}
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", result.Name)
}

// credentialSource builds the password source from the command flags, falling
// back to an interactive no-echo prompt.
func credentialSource(databaseName string) provision.CredentialFunc {
	return func() (*secret.Value, error) {
		return secret.Collect(secret.Source{
			EnvVar: provisionPasswordEnv,
			Stdin:  provisionPasswordStdin,
			Prompt: fmt.Sprintf("Admin password for provisioning %s: ", databaseName),
		})
	}
}
