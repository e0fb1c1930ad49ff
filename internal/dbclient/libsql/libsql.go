// Package libsql implements the provisioning client for libSQL servers via
// the libsql-client-go driver. A libSQL server exposes a single database and
// offers no DROP/CREATE DATABASE, so recreating the target degrades to
// dropping every user table before the seed load.
package libsql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Client wraps a connection to a remote libSQL database.
type Client struct {
	connStr string
	db      *sql.DB
}

// New applies the auth token (the collected credential) to the connection
// string and opens the database.
func New(connStr, authToken string) (*Client, error) {
	full := strings.TrimSpace(connStr)
	if authToken != "" {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full = full + sep + "authToken=" + url.QueryEscape(authToken)
	}

	db, err := sql.Open("libsql", full)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}
	return &Client{connStr: connStr, db: db}, nil
}

func (c *Client) DriverName() string {
	return "libsql"
}

// Endpoint reports the server host for the configuration artifact.
func (c *Client) Endpoint() (string, int, string) {
	host := "localhost"
	if u, err := url.Parse(c.connStr); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return host, 0, ""
}

func (c *Client) ProbeVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("version probe failed: %w", err)
	}
	return "libSQL (SQLite " + version + ")", nil
}

func (c *Client) Ping(ctx context.Context) error {
	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// DropDatabase drops every user table, the closest available equivalent of
// dropping the database on a libSQL server.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	tables, err := c.userTables(ctx)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	for _, table := range tables {
		if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to re-enable foreign keys: %w", err)
	}
	return nil
}

// CreateDatabase verifies the server is reachable; the database itself always
// exists on a libSQL server.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	return c.Ping(ctx)
}

func (c *Client) RunScript(ctx context.Context, name, script string) error {
	if _, err := c.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("seed script failed: %w", err)
	}
	return nil
}

func (c *Client) CountTables(ctx context.Context, name string) (int, error) {
	tables, err := c.userTables(ctx)
	if err != nil {
		return 0, err
	}
	return len(tables), nil
}

func (c *Client) CountRows(ctx context.Context, name, table string) (int, error) {
	var count int
	query := "SELECT count(*) FROM " + quoteIdentifier(table)
	if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) userTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
