// Package sqlite implements the provisioning client for SQLite file
// databases via modernc.org/sqlite. The connection string names a directory;
// each database is a <name>.db file inside it. There is no credential.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Client provisions file databases under a base directory.
type Client struct {
	dir string
}

// New resolves the directory from the connection string. Accepted forms:
// "sqlite://dir", "sqlite:dir", "file:dir", or a bare path.
func New(connStr string) (*Client, error) {
	dir := strings.TrimSpace(connStr)
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(dir, prefix) {
			dir = strings.TrimPrefix(dir, prefix)
			break
		}
	}
	if dir == "" {
		dir = "."
	}
	return &Client{dir: dir}, nil
}

func (c *Client) DriverName() string {
	return "sqlite"
}

// Endpoint reports placeholder connection parameters; file databases have no
// host or user.
func (c *Client) Endpoint() (string, int, string) {
	return "localhost", 0, ""
}

func (c *Client) databasePath(name string) string {
	return filepath.Join(c.dir, name+".db")
}

func (c *Client) ProbeVersion(ctx context.Context) (string, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return "", fmt.Errorf("failed to open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("version probe failed: %w", err)
	}
	return "SQLite " + version, nil
}

// Ping verifies the driver works and the base directory is usable.
func (c *Client) Ping(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare database directory %s: %w", c.dir, err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// DropDatabase removes the database file and its WAL sidecars.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	path := c.databasePath(name)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// CreateDatabase creates a fresh database file.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	db, err := sql.Open("sqlite", c.databasePath(name))
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

func (c *Client) RunScript(ctx context.Context, name, script string) error {
	db, err := sql.Open("sqlite", c.databasePath(name))
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("seed script failed against %s: %w", name, err)
	}
	return nil
}

func (c *Client) CountTables(ctx context.Context, name string) (int, error) {
	db, err := sql.Open("sqlite", c.databasePath(name))
	if err != nil {
		return 0, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	const query = `SELECT count(*) FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	var count int
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tables in %s: %w", name, err)
	}
	return count, nil
}

func (c *Client) CountRows(ctx context.Context, name, table string) (int, error) {
	db, err := sql.Open("sqlite", c.databasePath(name))
	if err != nil {
		return 0, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	var count int
	query := "SELECT count(*) FROM " + quoteIdentifier(table)
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s.%s: %w", name, table, err)
	}
	return count, nil
}

func (c *Client) Close() error {
	return nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
