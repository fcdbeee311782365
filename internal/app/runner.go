// Package app holds the query runner: it owns one database connection (or a
// loaded snapshot), executes read-only queries, keeps the latest result
// table, and plots it as per-station time series.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/isws/wqrun/internal/config"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/plot"
	"github.com/isws/wqrun/internal/series"
	"github.com/isws/wqrun/internal/snapshot"
)

// previewRows is the row limit of catalog preview queries.
const previewRows = 100

// Runner executes queries against one connection and keeps the most recent
// result. It is safe for concurrent use.
type Runner struct {
	mu sync.Mutex

	conn      config.Connection
	driver    database.Driver
	connector Connector
	table     *database.Table
	source    string
	closed    bool

	log      zerolog.Logger
	verbose  bool
	plot     config.Plot
	renderer series.Renderer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithVerbose enables info-level progress messages.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) { r.verbose = verbose }
}

// WithConnector replaces the connector used to open the database.
func WithConnector(c Connector) Option {
	return func(r *Runner) { r.connector = c }
}

// WithPlot sets the plot column names and figure size.
func WithPlot(p config.Plot) Option {
	return func(r *Runner) {
		if p.TimeColumn != "" {
			r.plot.TimeColumn = p.TimeColumn
		}
		if p.StationColumn != "" {
			r.plot.StationColumn = p.StationColumn
		}
		if p.WidthIn > 0 {
			r.plot.WidthIn = p.WidthIn
		}
		if p.HeightIn > 0 {
			r.plot.HeightIn = p.HeightIn
		}
	}
}

// WithRenderer sets the renderer used by PlotTimeSeries. The default writes
// a PNG named after the plotted field to the working directory.
func WithRenderer(rd series.Renderer) Option {
	return func(r *Runner) { r.renderer = rd }
}

func newRunner(opts []Option) *Runner {
	r := &Runner{
		connector: DefaultConnector(),
		log:       zerolog.Nop(),
		plot:      config.DefaultPlot(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.verbose {
		r.log = r.log.Level(zerolog.WarnLevel)
	}
	return r
}

// New connects to the database described by conn.
func New(ctx context.Context, conn config.Connection, opts ...Option) (*Runner, error) {
	r := newRunner(opts)
	r.conn = conn
	r.source = conn.DisplayString()

	d, err := r.connector.Connect(ctx, conn)
	if err != nil {
		return nil, &ErrConnection{Driver: conn.Driver, Cause: err}
	}
	if d == nil {
		return nil, &ErrConnection{Driver: conn.Driver, Cause: fmt.Errorf("connector returned no driver")}
	}
	r.driver = d

	r.log.Info().
		Str("driver", conn.Driver).
		Str("server", conn.Server).
		Str("database", d.DatabaseName()).
		Bool("trusted", conn.Trusted).
		Msg("database connection established")

	return r, nil
}

// FromSnapshot loads the result table from a snapshot file. The runner has
// no connection: Execute returns ErrNotConnected, everything else works.
func FromSnapshot(path string, opts ...Option) (*Runner, error) {
	r := newRunner(opts)

	t, info, err := snapshot.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	r.table = t
	r.source = path
	r.closed = true

	r.log.Info().
		Str("snapshot", info.ID.String()).
		Time("created", info.Created).
		Int("rows", info.Rows).
		Msg("snapshot loaded")

	return r, nil
}

// FromTable wraps an existing table, typically read from a CSV export.
func FromTable(t *database.Table, source string, opts ...Option) *Runner {
	r := newRunner(opts)
	r.table = t
	r.source = source
	r.closed = true
	return r
}

// Execute runs a SELECT query with @name parameters bound by the driver. On
// success the result replaces the stored table and is returned. Rejected or
// failed queries leave the stored table unchanged.
func (r *Runner) Execute(ctx context.Context, query string, params database.Params) (*database.Table, error) {
	if !IsSelect(query) {
		r.log.Warn().Str("query", abbreviate(query)).Msg("query rejected: only SELECT statements are allowed")
		return nil, &ErrRejectedQuery{Query: query}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.driver == nil || r.closed {
		return nil, ErrNotConnected
	}

	t, err := r.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	r.table = t

	r.log.Info().
		Int("rows", t.RowCount()).
		Int("columns", len(t.Columns)).
		Dur("duration", t.Duration).
		Msg("query executed")

	return t, nil
}

// Result returns the stored table, or nil before the first successful
// query. Callers must not modify it.
func (r *Runner) Result() *database.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table
}

// KnownTables returns the table catalog.
func (r *Runner) KnownTables() []string {
	return KnownTables()
}

// ListTables asks the server for its user tables.
func (r *Runner) ListTables(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.driver == nil || r.closed {
		return nil, ErrNotConnected
	}
	tables, err := r.driver.ListTables(ctx)
	if err != nil {
		return nil, &ErrQuery{Cause: err}
	}
	return tables, nil
}

// PreviewQuery returns a statement selecting the first rows of table in the
// connection's SQL dialect.
func (r *Runner) PreviewQuery(table string) string {
	dialect := database.Dialect(r.conn.Driver)
	if r.driver != nil {
		dialect = r.driver.Dialect()
	}
	if dialect == "" {
		dialect = database.DialectSQLServer
	}
	return dialect.PreviewQuery(table, previewRows)
}

// PlotTimeSeries draws field over time for every station in the stored
// table: one shared plot with a legend, or a grid of panels when multiPanel
// is set. Missing columns are reported without drawing anything.
func (r *Runner) PlotTimeSeries(field string, multiPanel bool) error {
	r.mu.Lock()
	t := r.table
	cols := series.Columns{Time: r.plot.TimeColumn, Station: r.plot.StationColumn, Field: field}
	rd := r.renderer
	r.mu.Unlock()

	if missing := cols.Missing(t); len(missing) > 0 {
		r.log.Warn().Strs("missing", missing).Msg("cannot plot: required columns not in result")
		return &ErrMissingColumn{Columns: missing}
	}

	stations, err := series.Group(t, cols)
	if err != nil {
		return err
	}

	layout := series.NewLayout(len(stations), multiPanel, cols.Station)
	if rd == nil {
		rd = plot.NewRenderer(slug.Make(field)+"-timeseries.png", r.plot.WidthIn, r.plot.HeightIn)
	}

	if err := rd.Render(stations, field, layout); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	r.log.Info().
		Str("field", field).
		Int("station_count", len(stations)).
		Bool("multi_panel", multiPanel).
		Int("rows", layout.Rows).
		Int("cols", layout.Cols).
		Msg("time series plotted")

	return nil
}

// SaveSnapshot writes the stored table to a snapshot file.
func (r *Runner) SaveSnapshot(path string) (snapshot.Info, error) {
	t := r.Result()
	if t == nil {
		return snapshot.Info{}, ErrNoResult
	}

	info, err := snapshot.SaveFile(path, t)
	if err != nil {
		return snapshot.Info{}, fmt.Errorf("save snapshot: %w", err)
	}

	r.log.Info().Str("path", path).Str("snapshot", info.ID.String()).Int("rows", info.Rows).Msg("snapshot saved")
	return info, nil
}

// Source describes where the stored data comes from: the connection or the
// file it was loaded from.
func (r *Runner) Source() string {
	return r.source
}

// Connected reports whether the runner can execute queries.
func (r *Runner) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.driver != nil && !r.closed
}

// DatabaseName returns the connected database name, if any.
func (r *Runner) DatabaseName() string {
	if r.driver == nil {
		return ""
	}
	return r.driver.DatabaseName()
}

// Close releases the connection. Calling it again is a no-op.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.driver == nil {
		return nil
	}
	if err := r.driver.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	r.log.Info().Msg("database connection closed")
	return nil
}
