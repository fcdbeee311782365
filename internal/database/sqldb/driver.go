// Package sqldb implements database.Driver on top of database/sql for the
// servers whose Go drivers only speak that interface: SQL Server through
// go-mssqldb and MySQL through go-sql-driver.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/isws/wqrun/internal/database"
)

// Driver implements database.Driver over a *sql.DB.
type Driver struct {
	driverName string
	dialect    database.Dialect
	db         *sql.DB
	dbName     string
}

// NewSQLServer creates a driver for Microsoft SQL Server.
func NewSQLServer() *Driver {
	return &Driver{driverName: "sqlserver", dialect: database.DialectSQLServer}
}

// NewMySQL creates a driver for MySQL and MariaDB.
func NewMySQL() *Driver {
	return &Driver{driverName: "mysql", dialect: database.DialectMySQL}
}

// NewWithDB wraps an already opened handle. Used by tests with sqlmock.
func NewWithDB(db *sql.DB, dialect database.Dialect, dbName string) *Driver {
	return &Driver{db: db, dialect: dialect, dbName: dbName}
}

// Connect opens the handle and verifies it with a ping, since sql.Open
// alone never touches the network.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.db = db
	d.dbName = databaseFromDSN(d.dialect, dsn)
	return nil
}

// Close closes the handle.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("not connected")
	}
	return d.db.PingContext(ctx)
}

// ListTables returns schema-qualified names of all user tables.
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	q := queryListTablesSQLServer
	if d.dialect == database.DialectMySQL {
		q = queryListTablesMySQL
	}
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ExecuteQuery runs a SQL query and returns the results.
func (d *Driver) ExecuteQuery(ctx context.Context, query string, params database.Params) (*database.Table, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	start := time.Now()

	q, args, err := d.bind(query, params)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	columns := make([]database.Column, len(types))
	for i, ct := range types {
		columns[i] = database.Column{Name: ct.Name(), DataType: strings.ToUpper(ct.DatabaseTypeName())}
	}

	table := &database.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalize(v, columns[i].DataType)
		}
		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	table.Duration = time.Since(start)
	return table, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// Dialect returns the server flavour.
func (d *Driver) Dialect() database.Dialect {
	return d.dialect
}

func (d *Driver) bind(query string, params database.Params) (string, []any, error) {
	if len(params) == 0 {
		return query, nil, nil
	}
	if d.dialect == database.DialectMySQL {
		return bindPositional(query, params)
	}
	return query, namedArgs(params), nil
}

func normalize(v any, dbType string) any {
	if b, ok := v.([]byte); ok && dbType == "UNIQUEIDENTIFIER" && len(b) == 16 {
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err == nil {
			return id.String()
		}
	}
	return database.NormalizeTyped(v, dbType)
}

func databaseFromDSN(dialect database.Dialect, dsn string) string {
	switch dialect {
	case database.DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return ""
		}
		return cfg.DBName
	default:
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		return u.Query().Get("database")
	}
}

var _ database.Driver = (*Driver)(nil)
