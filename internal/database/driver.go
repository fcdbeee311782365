package database

import (
	"context"
	"strconv"
)

// Params holds named query parameters. Queries reference them as @name and
// every driver binds them; values are never spliced into the SQL text.
type Params map[string]any

// Driver defines the interface for database operations.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListTables returns schema-qualified names of the live user tables.
	ListTables(ctx context.Context) ([]string, error)

	// ExecuteQuery runs a SQL query with bound parameters and materializes
	// the full result set.
	ExecuteQuery(ctx context.Context, query string, params Params) (*Table, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string

	// Dialect returns the SQL flavour spoken by the server.
	Dialect() Dialect
}

// Dialect identifies the SQL flavour of a driver.
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
)

// PreviewQuery returns a statement that selects the first n rows of table.
func (d Dialect) PreviewQuery(table string, n int) string {
	if d == DialectSQLServer {
		return "SELECT TOP " + strconv.Itoa(n) + " * FROM " + table
	}
	return "SELECT * FROM " + table + " LIMIT " + strconv.Itoa(n)
}
