package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
)

func newTablesCmd(c *cli) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the known tables",
		Long: `List the tables of the water-quality database. By default the built-in
catalog is printed without connecting; --live asks the server instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := app.KnownTables()

			if live {
				ctx, cancel := c.withTimeout(cmd.Context())
				defer cancel()

				r, err := c.connect(ctx)
				if err != nil {
					return err
				}
				defer r.Close()

				if tables, err = r.ListTables(ctx); err != nil {
					return err
				}
			}

			items := make([]pterm.BulletListItem, len(tables))
			for i, t := range tables {
				items[i] = pterm.BulletListItem{Level: 0, Text: t}
			}
			return pterm.DefaultBulletList.WithItems(items).Render()
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "list the tables reported by the server")
	return cmd
}
