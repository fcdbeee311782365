package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/config"
	"github.com/isws/wqrun/internal/export"
	"github.com/isws/wqrun/internal/logging"
	"github.com/isws/wqrun/internal/plot"
)

// cli carries the global flags and the state built from them before any
// subcommand runs.
type cli struct {
	configPath string
	profile    string
	verbose    bool
	logJSON    bool

	stdout io.Writer
	stderr io.Writer

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "wqrun",
		Short:         "Read-only query runner for the water-quality database",
		Long:          `wqrun runs SELECT queries against the water-quality database, exports results to CSV, JSON or snapshot files, and plots per-station time series.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.PersistentFlags()
	fs.StringVar(&c.configPath, "config", "", "config file (default ~/.wqrun/config.yaml)")
	fs.StringVarP(&c.profile, "profile", "p", "", "connection profile name")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "log progress messages")
	fs.BoolVar(&c.logJSON, "log-json", false, "log JSON lines instead of console output")

	root.AddCommand(
		newQueryCmd(c),
		newTablesCmd(c),
		newPlotCmd(c),
		newSummaryCmd(c),
		newTrendCmd(c),
		newConsoleCmd(c),
		newSecretCmd(c),
		newInitCmd(c),
	)

	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	c.cfg = cfg
	c.verbose = c.verbose || cfg.Verbose

	if c.logJSON {
		c.log = logging.JSON(c.stderr, c.verbose)
	} else {
		c.log = logging.New(c.stderr, c.verbose)
	}
	return nil
}

func (c *cli) runnerOptions(extra ...app.Option) []app.Option {
	opts := []app.Option{
		app.WithLogger(c.log),
		app.WithVerbose(c.verbose),
		app.WithPlot(c.cfg.Plot),
	}
	return append(opts, extra...)
}

// connect opens a runner on the selected profile.
func (c *cli) connect(ctx context.Context, extra ...app.Option) (*app.Runner, error) {
	conn, err := c.cfg.Select(c.profile)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	return app.New(ctx, conn, c.runnerOptions(extra...)...)
}

// open loads a runner from a CSV or JSON export, or from a snapshot file
// for any other extension. The database is never contacted.
func (c *cli) open(path string, extra ...app.Option) (*app.Runner, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		t, err := export.ReadFile(path, export.ReadOptions{InferTypes: true})
		if err != nil {
			return nil, err
		}
		return app.FromTable(t, path, c.runnerOptions(extra...)...), nil
	default:
		return app.FromSnapshot(path, c.runnerOptions(extra...)...)
	}
}

// withTimeout applies the configured query timeout, if any.
func (c *cli) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.QueryTimeout)
}

// figureFlags are shared by every command that draws a figure.
type figureFlags struct {
	out        string
	multiPanel bool
	width      float64
	height     float64
}

func (f *figureFlags) register(fs *pflag.FlagSet, defaultOut string) {
	fs.StringVarP(&f.out, "out", "o", defaultOut, "figure file (.png, .svg, .pdf)")
	fs.BoolVar(&f.multiPanel, "multipanel", false, "one panel per station instead of a shared plot")
	fs.Float64Var(&f.width, "width", 0, "figure width in inches (default from config)")
	fs.Float64Var(&f.height, "height", 0, "figure height in inches (default from config)")
}

func (c *cli) renderer(f figureFlags) *plot.Renderer {
	w, h := f.width, f.height
	if w <= 0 {
		w = c.cfg.Plot.WidthIn
	}
	if h <= 0 {
		h = c.cfg.Plot.HeightIn
	}
	return plot.NewRenderer(f.out, w, h)
}

func (c *cli) success(format string, a ...any) {
	pterm.Success.Printfln(format, a...)
}
