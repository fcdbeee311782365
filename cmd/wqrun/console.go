package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/tui"
)

func newConsoleCmd(c *cli) *cobra.Command {
	var (
		from      string
		exportDir string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive query console",
		Long: `Start the interactive console on the selected profile, or on an export or
snapshot file with --from (browsing and plotting only).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log output would draw over the alternate screen.
			quiet := app.WithLogger(zerolog.Nop())

			var (
				r   *app.Runner
				err error
			)
			if from != "" {
				r, err = c.open(from, quiet)
			} else {
				ctx, cancel := c.withTimeout(cmd.Context())
				r, err = c.connect(ctx, quiet)
				cancel()
			}
			if err != nil {
				return err
			}
			defer r.Close()

			return tui.Run(r, tui.Options{
				QueryTimeout: c.cfg.QueryTimeout,
				ExportDir:    exportDir,
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "open a CSV, JSON or snapshot file instead of connecting")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory for exports")
	return cmd
}
