package app

import (
	"context"
	"fmt"

	"github.com/isws/wqrun/internal/config"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/database/postgres"
	"github.com/isws/wqrun/internal/database/sqldb"
)

// Connector opens a database driver for a connection profile.
type Connector interface {
	Connect(ctx context.Context, conn config.Connection) (database.Driver, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, conn config.Connection) (database.Driver, error)

func (f ConnectorFunc) Connect(ctx context.Context, conn config.Connection) (database.Driver, error) {
	return f(ctx, conn)
}

// NewDriver returns an unconnected driver for the named backend.
func NewDriver(name string) (database.Driver, error) {
	switch name {
	case config.DriverSQLServer, "":
		return sqldb.NewSQLServer(), nil
	case config.DriverPostgres:
		return postgres.New(), nil
	case config.DriverMySQL:
		return sqldb.NewMySQL(), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", name)
	}
}

type driverConnector struct{}

// DefaultConnector resolves the profile password from the keyring when
// needed, builds the DSN, and connects the matching driver.
func DefaultConnector() Connector {
	return driverConnector{}
}

func (driverConnector) Connect(ctx context.Context, conn config.Connection) (database.Driver, error) {
	conn, err := config.ResolvePassword(conn)
	if err != nil {
		return nil, err
	}

	dsn, err := conn.DSN()
	if err != nil {
		return nil, err
	}

	d, err := NewDriver(conn.Driver)
	if err != nil {
		return nil, err
	}

	if err := d.Connect(ctx, dsn); err != nil {
		return nil, err
	}
	return d, nil
}
