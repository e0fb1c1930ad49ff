package cmd

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/seedctl/seedctl/internal/config"
	"github.com/seedctl/seedctl/internal/dbclient"
	"github.com/seedctl/seedctl/internal/expect"
	"github.com/seedctl/seedctl/internal/secret"
	"github.com/spf13/cobra"
)

var (
	verifyDB          string
	verifyEnv         string
	verifyName        string
	verifyExpect      string
	verifyPasswordEnv string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check table and row counts of an already provisioned database",
	Long: `Check table and row counts of an already provisioned database.

Runs only the verification queries of the provisioning sequence: the base
table count and, when --expect is given, per-table minimum row counts.`,
	Example: `  # Report the table count
  seedctl verify --db postgres://postgres@localhost:5432/postgres --name northwind

  # Verify seed expectations
  seedctl verify --expect northwind.expect.json`,
	Run: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyDB, "db", "", "Database connection string (overrides environment selection)")
	verifyCmd.Flags().StringVar(&verifyEnv, "environment", "", "Named environment from seedctl.toml")
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "Target database name (overrides environment)")
	verifyCmd.Flags().StringVar(&verifyExpect, "expect", "", "Expectations JSON file to check")
	verifyCmd.Flags().StringVar(&verifyPasswordEnv, "password-env", "", "Read the admin password from this environment variable")
}

func runVerify(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	env, err := config.ResolveEnvironment(cfg, verifyEnv)
	if err != nil {
		log.Fatalf("Failed to resolve environment: %v", err)
	}

	connStr := env.DatabaseURL
	if s := strings.TrimSpace(verifyDB); s != "" {
		connStr = s
	}
	name := env.DatabaseName
	if s := strings.TrimSpace(verifyName); s != "" {
		name = s
	}

	driverType, err := dbclient.Detect(connStr)
	if err != nil {
		log.Fatalf("Failed to resolve database driver: %v", err)
	}

	cred := verifyCredential(driverType, connStr)
	defer cred.Wipe()

	client, err := dbclient.New(connStr, cred.String())
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		log.Fatalf("Connection test failed: %v", err)
	}

	count, err := client.CountTables(ctx, name)
	if err != nil {
		log.Fatalf("Failed to count tables: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Database %s has %d tables\n", name, count)

	if verifyExpect == "" {
		return
	}

	expectations, err := expect.Load(verifyExpect)
	if err != nil {
		log.Fatalf("Failed to load expectations: %v", err)
	}

	failures := 0
	for _, exp := range expectations.Tables {
		rows, err := client.CountRows(ctx, name, exp.Name)
		if err != nil {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s: %v\n", exp.Name, err)
			failures++
			continue
		}
		if rows < exp.MinRows {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s: %d rows, expected at least %d\n",
				exp.Name, rows, exp.MinRows)
			failures++
			continue
		}
		_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "✓ %s: %d rows\n", exp.Name, rows)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

// verifyCredential collects a password only when the driver needs one and the
// URL does not already carry it.
func verifyCredential(driverType dbclient.DriverType, connStr string) *secret.Value {
	if !dbclient.RequiresPassword(driverType) {
		return nil
	}
	if u, err := url.Parse(connStr); err == nil && u.User != nil {
		if pw, ok := u.User.Password(); ok && pw != "" {
			return nil
		}
	}

	cred, err := secret.Collect(secret.Source{
		EnvVar: verifyPasswordEnv,
		Prompt: "Admin password: ",
	})
	if err != nil {
		log.Fatalf("Failed to collect password: %v", err)
	}
	return cred
}
