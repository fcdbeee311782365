package main

import (
	"errors"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/stats"
)

func newSummaryCmd(c *cli) *cobra.Command {
	var (
		from   string
		opts   stats.BoxOptions
		figure figureFlags
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Per-site box statistics of one parameter",
		Long: `Compute count, quartiles, mean and range of one parameter per site from an
export or snapshot of sample results. Sites with fewer than --min-count
values are left out.`,
		Example: `  wqrun summary --from samples.csv --param "Chloride" -o chloride.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Param == "" {
				return errors.New("--param is required")
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

			boxes, err := stats.BoxStats(t, opts)
			if err != nil {
				return err
			}
			if len(boxes) == 0 {
				pterm.Warning.Printfln("no site has enough %s values", opts.Param)
				return nil
			}

			data := pterm.TableData{{"Site", "N", "Min", "Q1", "Median", "Mean", "Q3", "Max"}}
			for _, b := range boxes {
				data = append(data, []string{
					b.Site, strconv.Itoa(b.Count),
					num(b.Min), num(b.Q1), num(b.Median), num(b.Mean), num(b.Q3), num(b.Max),
				})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			if figure.out == "" {
				return nil
			}
			if err := c.renderer(figure).RenderBoxes(boxes, opts.Param); err != nil {
				return err
			}
			c.success("wrote box plot to %s", figure.out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "CSV, JSON or snapshot file to read")
	fs.StringVar(&opts.Param, "param", "", "parameter name to summarize")
	fs.IntVar(&opts.MinCount, "min-count", stats.DefaultMinCount, "minimum values per site (negative keeps every site)")
	fs.StringVar(&opts.ParamColumn, "param-column", stats.DefaultParamColumn, "column holding the parameter name")
	fs.StringVar(&opts.SiteColumn, "site-column", stats.DefaultSiteColumn, "column holding the site name")
	fs.StringVar(&opts.ValueColumn, "value-column", stats.DefaultValueColumn, "column holding the result value")
	figure.register(fs, "")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
