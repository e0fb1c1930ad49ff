// Package postgres implements the provisioning client for PostgreSQL using
// lib/pq. Administrative statements run against the server's maintenance
// database; per-target connections are opened for script execution and
// verification queries.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lib/pq"
)

const maintenanceDatabase = "postgres"

// Client holds a connection to the maintenance database and opens short-lived
// connections to target databases as needed.
type Client struct {
	base  *url.URL
	admin *sql.DB
}

// New parses the connection URL, applies the collected password, and opens
// the maintenance connection. No network I/O happens until the first query.
func New(connStr, password string) (*Client, error) {
	base, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection string: %w", err)
	}

	user := "postgres"
	if base.User != nil && base.User.Username() != "" {
		user = base.User.Username()
	}
	if password != "" {
		base.User = url.UserPassword(user, password)
	} else if _, hasPassword := base.User.Password(); !hasPassword {
		base.User = url.User(user)
	}

	admin, err := sql.Open("postgres", withDatabase(base, maintenanceDatabase))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	return &Client{base: base, admin: admin}, nil
}

// withDatabase returns the connection string pointed at the given database.
func withDatabase(base *url.URL, name string) string {
	u := *base
	u.Path = "/" + name
	return u.String()
}

func (c *Client) DriverName() string {
	return "postgres"
}

// Endpoint reports host, port, and user for the configuration artifact.
func (c *Client) Endpoint() (string, int, string) {
	host := c.base.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 5432
	if p := c.base.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	user := "postgres"
	if c.base.User != nil && c.base.User.Username() != "" {
		user = c.base.User.Username()
	}
	return host, port, user
}

func (c *Client) ProbeVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.admin.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("version probe failed: %w", err)
	}
	return version, nil
}

func (c *Client) Ping(ctx context.Context) error {
	var one int
	if err := c.admin.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

func (c *Client) DropDatabase(ctx context.Context, name string) error {
	_, err := c.admin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name))
	if err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	_, err := c.admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name))
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// RunScript executes the whole script in a single Exec. With no parameters,
// lib/pq uses the simple query protocol, which accepts multiple statements.
func (c *Client) RunScript(ctx context.Context, name, script string) error {
	db, err := c.openTarget(name)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("seed script failed against %s: %w", name, err)
	}
	return nil
}

func (c *Client) CountTables(ctx context.Context, name string) (int, error) {
	db, err := c.openTarget(name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	const query = `SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`
	var count int
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tables in %s: %w", name, err)
	}
	return count, nil
}

func (c *Client) CountRows(ctx context.Context, name, table string) (int, error) {
	db, err := c.openTarget(name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	var count int
	query := "SELECT count(*) FROM " + pq.QuoteIdentifier(table)
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s.%s: %w", name, table, err)
	}
	return count, nil
}

func (c *Client) Close() error {
	return c.admin.Close()
}

func (c *Client) openTarget(name string) (*sql.DB, error) {
	db, err := sql.Open("postgres", withDatabase(c.base, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	return db, nil
}
