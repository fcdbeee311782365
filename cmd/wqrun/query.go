package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/export"
)

type queryFlags struct {
	file     string
	params   []string
	csv      string
	json     string
	snapshot string
	limit    int
	plot     string
	figure   figureFlags
}

func newQueryCmd(c *cli) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SELECT query and export or plot the result",
		Long: `Run a SELECT query read from --file (or "-" for stdin) or given as the
argument. Parameters are referenced as @name in the query and bound with
--param name=value. Only SELECT statements are sent to the server.`,
		Example: `  wqrun query -f dtw.sql --param station=403609 --csv dtw.csv
  wqrun query "SELECT TOP 10 * FROM dbo.Sample" --json sample.json
  wqrun query -f dtw.sql --plot DTW_FT --multipanel -o dtw.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(f.file, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			// Rejected before connecting; Execute applies the same guard.
			if !app.IsSelect(query) {
				return &app.ErrRejectedQuery{Query: query}
			}
			params, err := database.ParseParams(f.params)
			if err != nil {
				return err
			}

			var extra []app.Option
			if f.plot != "" && f.figure.out != "" {
				extra = append(extra, app.WithRenderer(c.renderer(f.figure)))
			}

			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()

			r, err := c.connect(ctx, extra...)
			if err != nil {
				return err
			}
			defer r.Close()

			t, err := r.Execute(ctx, query, params)
			if err != nil {
				return err
			}
			printTable(t, f.limit)

			return writeOutputs(c, r, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", `file holding the query ("-" reads stdin)`)
	fs.StringArrayVar(&f.params, "param", nil, "query parameter name=value (repeatable)")
	fs.StringVar(&f.csv, "csv", "", "write the result to a CSV file")
	fs.StringVar(&f.json, "json", "", "write the result to a JSON file")
	fs.StringVar(&f.snapshot, "snapshot", "", "write the result to a snapshot file")
	fs.IntVar(&f.limit, "limit", 20, "rows to print (0 prints none, -1 prints all)")
	fs.StringVar(&f.plot, "plot", "", "plot this field per station")
	f.figure.register(fs, "")

	return cmd
}

func readQuery(file string, args []string, stdin io.Reader) (string, error) {
	var query string
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("give the query as an argument or with --file, not both")
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		query = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read query file: %w", err)
		}
		query = string(b)
	case len(args) == 1:
		query = args[0]
	default:
		return "", errors.New("no query: pass SQL or --file")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("query is empty")
	}
	return query, nil
}

func writeOutputs(c *cli, r *app.Runner, f queryFlags) error {
	t := r.Result()

	for _, out := range []string{f.csv, f.json} {
		if out == "" {
			continue
		}
		if err := export.WriteFile(out, t); err != nil {
			return err
		}
		c.success("wrote %s rows to %s", humanize.Comma(int64(t.RowCount())), out)
	}

	if f.snapshot != "" {
		info, err := r.SaveSnapshot(f.snapshot)
		if err != nil {
			return err
		}
		c.success("saved snapshot %s to %s", info.ID, f.snapshot)
	}

	if f.plot != "" {
		if err := r.PlotTimeSeries(f.plot, f.figure.multiPanel); err != nil {
			return err
		}
		c.success("plotted %s", f.plot)
	}

	return nil
}

// printTable prints the first limit rows of t and a row-count footer.
func printTable(t *database.Table, limit int) {
	if limit < 0 || limit > t.RowCount() {
		limit = t.RowCount()
	}

	if limit > 0 && len(t.Columns) > 0 {
		data := pterm.TableData{t.ColumnNames()}
		for i := 0; i < limit; i++ {
			row := make([]string, len(t.Columns))
			for j := range t.Columns {
				row[j] = export.FormatCell(t.Value(i, j))
			}
			data = append(data, row)
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	footer := fmt.Sprintf("%s row(s), %d column(s) in %s",
		humanize.Comma(int64(t.RowCount())), len(t.Columns), t.Duration.Round(time.Millisecond))
	if limit < t.RowCount() {
		footer += fmt.Sprintf(" (showing %d)", limit)
	}
	pterm.Info.Println(footer)
}
