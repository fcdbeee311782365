package main

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/export"
	"github.com/isws/wqrun/internal/series"
	"github.com/isws/wqrun/internal/stats"
)

func newTrendCmd(c *cli) *cobra.Command {
	var (
		from   string
		csvOut string
		opts   stats.TrendOptions
		figure figureFlags
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Daily mean of one parameter for selected sites",
		Example: `  wqrun trend --from samples.csv --param Nitrate --site "Well 1" --site "Well 2" -o nitrate.png
  wqrun trend --from samples.wqs --param Nitrate --site "Well 1" --csv nitrate_daily.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Param == "" || len(opts.Sites) == 0 {
				return errors.New("--param and at least one --site are required")
			}

			r, err := c.open(from)
			if err != nil {
				return err
			}
			defer r.Close()

			t := r.Result()
			if t == nil {
				return app.ErrNoResult
			}

			points, err := stats.DailyMeans(t, opts)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				pterm.Warning.Printfln("no %s values for the selected sites", opts.Param)
				return nil
			}

			daily := stats.Table(points, opts.Sites)
			printTable(daily, -1)

			if csvOut != "" {
				if err := export.WriteFile(csvOut, daily); err != nil {
					return err
				}
				c.success("wrote daily means to %s", csvOut)
			}

			if figure.out != "" {
				stations := series.FromDailyMeans(points, opts.Sites)
				layout := series.NewLayout(len(stations), figure.multiPanel, opts.SiteColumn)
				if err := c.renderer(figure).Render(stations, opts.Param, layout); err != nil {
					return err
				}
				c.success("wrote trend plot to %s", figure.out)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "CSV, JSON or snapshot file to read")
	fs.StringVar(&opts.Param, "param", "", "parameter name to average")
	fs.StringArrayVar(&opts.Sites, "site", nil, "site to include (repeatable)")
	fs.StringVar(&csvOut, "csv", "", "write the daily means to a CSV or JSON file")
	fs.StringVar(&opts.ParamColumn, "param-column", stats.DefaultParamColumn, "column holding the parameter name")
	fs.StringVar(&opts.SiteColumn, "site-column", stats.DefaultSiteColumn, "column holding the site name")
	fs.StringVar(&opts.ValueColumn, "value-column", stats.DefaultValueColumn, "column holding the result value")
	fs.StringVar(&opts.DateColumn, "date-column", stats.DefaultDateColumn, "column holding the sample date")
	figure.register(fs, "")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
