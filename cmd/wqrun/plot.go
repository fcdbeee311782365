package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
)

func newPlotCmd(c *cli) *cobra.Command {
	var (
		from   string
		field  string
		figure figureFlags
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a field per station from an export or snapshot",
		Example: `  wqrun plot --from dtw.csv --field DTW_FT -o dtw.png
  wqrun plot --from dtw.wqs --field DTW_FT --multipanel -o grid.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if field == "" {
				return errors.New("--field is required")
			}

			r, err := c.open(from, app.WithRenderer(c.renderer(figure)))
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.PlotTimeSeries(field, figure.multiPanel); err != nil {
				return err
			}
			c.success("plotted %s from %s to %s", field, from, figure.out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "CSV, JSON or snapshot file to read")
	fs.StringVar(&field, "field", "", "column to plot")
	figure.register(fs, "timeseries.png")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
