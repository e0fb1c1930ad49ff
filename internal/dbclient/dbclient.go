// Package dbclient provides the database client used by the provisioning
// sequencer. A client supports exactly the operations provisioning needs: a
// version probe, a connectivity check, drop/create database, bulk script
// execution, and table/row counts.
package dbclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seedctl/seedctl/internal/dbclient/libsql"
	"github.com/seedctl/seedctl/internal/dbclient/postgres"
	"github.com/seedctl/seedctl/internal/dbclient/sqlite"
)

// Endpoint describes where the provisioned database can be reached, for the
// emitted configuration artifact.
type Endpoint struct {
	Host string
	Port int
	User string
}

// Client is the contract between the sequencer and a database engine.
type Client interface {
	// DriverName identifies the underlying driver.
	DriverName() string

	// ProbeVersion returns the server version string.
	ProbeVersion(ctx context.Context) (string, error)

	// Ping runs a trivial query (SELECT 1) against the maintenance database.
	Ping(ctx context.Context) error

	// DropDatabase drops the named database if it exists.
	DropDatabase(ctx context.Context, name string) error

	// CreateDatabase creates the named database.
	CreateDatabase(ctx context.Context, name string) error

	// RunScript executes a SQL script against the named database.
	RunScript(ctx context.Context, name, script string) error

	// CountTables returns the number of base tables in the named database.
	CountTables(ctx context.Context, name string) (int, error)

	// CountRows returns the number of rows in a table of the named database.
	CountRows(ctx context.Context, name, table string) (int, error)

	// Close releases all connections held by the client.
	Close() error
}

// DriverType identifies a supported database engine.
type DriverType string

const (
	DriverPostgres DriverType = "postgres"
	DriverSQLite   DriverType = "sqlite"
	DriverLibSQL   DriverType = "libsql"
)

// Detect resolves the driver for a connection string from its scheme.
func Detect(connStr string) (DriverType, error) {
	trimmed := strings.TrimSpace(connStr)
	if trimmed == "" {
		return "", fmt.Errorf("empty connection string")
	}

	switch {
	case strings.HasPrefix(trimmed, "postgres://"), strings.HasPrefix(trimmed, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(trimmed, "sqlite://"), strings.HasPrefix(trimmed, "sqlite:"),
		strings.HasPrefix(trimmed, "file:"):
		return DriverSQLite, nil
	case strings.HasPrefix(trimmed, "libsql://"), strings.HasPrefix(trimmed, "wss://"),
		strings.HasPrefix(trimmed, "ws://"):
		return DriverLibSQL, nil
	}

	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return "", fmt.Errorf("unsupported database driver for scheme %q", u.Scheme)
	}

	// A bare path is treated as a SQLite directory.
	return DriverSQLite, nil
}

// RequiresPassword reports whether a driver authenticates with a collected
// credential. SQLite file databases have no credential; libSQL uses an
// optional auth token.
func RequiresPassword(t DriverType) bool {
	return t == DriverPostgres
}

// New constructs a client for the connection string. The password is applied
// to the connection for drivers that authenticate with one.
func New(connStr, password string) (Client, error) {
	driverType, err := Detect(connStr)
	if err != nil {
		return nil, err
	}

	switch driverType {
	case DriverPostgres:
		return postgres.New(connStr, password)
	case DriverSQLite:
		return sqlite.New(connStr)
	case DriverLibSQL:
		return libsql.New(connStr, password)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driverType)
	}
}

// EndpointOf extracts connection parameters for the configuration artifact,
// with credentials never included.
func EndpointOf(c Client) Endpoint {
	type endpointer interface{ Endpoint() (string, int, string) }
	if e, ok := c.(endpointer); ok {
		host, port, user := e.Endpoint()
		return Endpoint{Host: host, Port: port, User: user}
	}
	return Endpoint{Host: "localhost"}
}

var (
	_ Client = (*postgres.Client)(nil)
	_ Client = (*sqlite.Client)(nil)
	_ Client = (*libsql.Client)(nil)
)
