package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-sql-driver/mysql"
)

// Supported driver names.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
)

// Defaults reproduce the monitoring database the tool was written against.
const (
	DefaultDriver        = DriverSQLServer
	DefaultServer        = "datastorm"
	DefaultDatabase      = "ESTL_DB"
	DefaultProfile       = "default"
	DefaultTimeColumn    = "DateTime"
	DefaultStationColumn = "Station_ID"

	appName = "wqrun"
)

// Config represents the application configuration.
type Config struct {
	Profiles       []Connection  `mapstructure:"profiles" yaml:"profiles"`
	DefaultProfile string        `mapstructure:"default_profile" yaml:"default_profile"`
	Verbose        bool          `mapstructure:"verbose" yaml:"verbose"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	Plot           Plot          `mapstructure:"plot" yaml:"plot"`
}

// Connection represents a saved database connection profile.
type Connection struct {
	Name     string            `mapstructure:"name" yaml:"name"`
	Driver   string            `mapstructure:"driver" yaml:"driver"`
	Server   string            `mapstructure:"server" yaml:"server"`
	Port     int               `mapstructure:"port" yaml:"port,omitempty"`
	Database string            `mapstructure:"database" yaml:"database"`
	Trusted  bool              `mapstructure:"trusted" yaml:"trusted"`
	Username string            `mapstructure:"username" yaml:"username,omitempty"`
	Password string            `mapstructure:"password" yaml:"password,omitempty"`
	Encrypt  string            `mapstructure:"encrypt" yaml:"encrypt,omitempty"`
	Params   map[string]string `mapstructure:"params" yaml:"params,omitempty"`
}

// Plot holds the column names and figure size used for time-series plots.
type Plot struct {
	TimeColumn    string  `mapstructure:"time_column" yaml:"time_column"`
	StationColumn string  `mapstructure:"station_column" yaml:"station_column"`
	WidthIn       float64 `mapstructure:"width_in" yaml:"width_in"`
	HeightIn      float64 `mapstructure:"height_in" yaml:"height_in"`
}

// DefaultConnection returns the profile used when nothing is configured:
// SQL Server on datastorm with integrated authentication.
func DefaultConnection() Connection {
	return Connection{
		Name:     DefaultProfile,
		Driver:   DefaultDriver,
		Server:   DefaultServer,
		Database: DefaultDatabase,
		Trusted:  true,
	}
}

// DefaultPlot returns the plot settings used when none are configured.
func DefaultPlot() Plot {
	return Plot{
		TimeColumn:    DefaultTimeColumn,
		StationColumn: DefaultStationColumn,
		WidthIn:       10,
		HeightIn:      6,
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Profiles),
		validation.Field(&c.DefaultProfile, validation.By(func(any) error {
			if c.DefaultProfile == "" || len(c.Profiles) == 0 {
				return nil
			}
			if _, ok := c.Profile(c.DefaultProfile); !ok {
				return fmt.Errorf("unknown profile %q", c.DefaultProfile)
			}
			return nil
		})),
		validation.Field(&c.QueryTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Plot),
	)
}

func (p Plot) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TimeColumn, validation.Required),
		validation.Field(&p.StationColumn, validation.Required),
		validation.Field(&p.WidthIn, validation.Min(0.0)),
		validation.Field(&p.HeightIn, validation.Min(0.0)),
	)
}

func (c Connection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLServer, DriverPostgres, DriverMySQL)),
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.Username, validation.When(!c.Trusted, validation.Required)),
	)
}

// Profile looks up a connection profile by name.
func (cfg *Config) Profile(name string) (Connection, bool) {
	for _, c := range cfg.Profiles {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}

// Select returns the named profile, the default profile, the first profile,
// or the built-in default connection, in that order.
func (cfg *Config) Select(name string) (Connection, error) {
	if name != "" {
		c, ok := cfg.Profile(name)
		if !ok {
			return Connection{}, fmt.Errorf("profile %q not found", name)
		}
		return c, nil
	}
	if cfg.DefaultProfile != "" {
		if c, ok := cfg.Profile(cfg.DefaultProfile); ok {
			return c, nil
		}
	}
	if len(cfg.Profiles) > 0 {
		return cfg.Profiles[0], nil
	}
	return DefaultConnection(), nil
}

// AddProfile appends a profile if one with the same name doesn't exist.
func (cfg *Config) AddProfile(conn Connection) {
	if _, ok := cfg.Profile(conn.Name); !ok {
		cfg.Profiles = append(cfg.Profiles, conn)
	}
}

// DSN builds the driver-specific connection string for the profile. In
// trusted mode no credentials are included so the driver falls back to the
// operating-system identity.
func (c Connection) DSN() (string, error) {
	switch c.Driver {
	case DriverSQLServer, "":
		return c.sqlServerDSN(), nil
	case DriverPostgres:
		return c.postgresDSN(), nil
	case DriverMySQL:
		return c.mysqlDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

func (c Connection) sqlServerDSN() string {
	u := &url.URL{Scheme: "sqlserver"}

	host, instance, _ := strings.Cut(c.Server, `\`)
	u.Host = c.hostPort(host)
	if instance != "" {
		u.Path = "/" + instance
	}
	if !c.Trusted && c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}

	q := url.Values{}
	q.Set("database", c.Database)
	q.Set("app name", appName)
	if c.Encrypt != "" {
		q.Set("encrypt", c.Encrypt)
	}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (c Connection) postgresDSN() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   c.hostPort(c.Server),
		Path:   "/" + c.Database,
	}
	if !c.Trusted && c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}

	q := url.Values{}
	q.Set("application_name", appName)
	if c.Encrypt != "" {
		q.Set("sslmode", c.Encrypt)
	}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (c Connection) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = net.JoinHostPort(c.Server, strconv.Itoa(port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	if !c.Trusted {
		cfg.User = c.Username
		cfg.Passwd = c.Password
	}
	if c.Encrypt != "" {
		cfg.TLSConfig = c.Encrypt
	}
	if len(c.Params) > 0 {
		cfg.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

func (c Connection) hostPort(host string) string {
	if c.Port > 0 {
		return net.JoinHostPort(host, strconv.Itoa(c.Port))
	}
	return host
}

// DisplayString returns a human-readable summary of the connection without
// secrets.
func (c Connection) DisplayString() string {
	driver := c.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	s := c.Server
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database

	switch {
	case c.Trusted:
		s += " (trusted)"
	case c.Username != "":
		s = c.Username + "@" + s
	}
	return driver + "://" + s
}
