package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/config"
)

func newInitCmd(c *cli) *cobra.Command {
	var (
		force bool
		conn  = config.DefaultConnection()
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with one connection profile",
		Example: `  wqrun init
  wqrun init --driver postgres --server db.example.org --database estl --username reader`,
		Args: cobra.NoArgs,
		// The file usually does not exist yet, so skip loading it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(path + " already exists (use --force)")
			}

			conn.Trusted = conn.Username == ""
			cfg := &config.Config{
				DefaultProfile: conn.Name,
				Plot:           config.DefaultPlot(),
			}
			cfg.AddProfile(conn)
			if err := cfg.Validate(); err != nil {
				return &app.ErrConfig{Cause: err}
			}

			if err := config.Save(cfg, path); err != nil {
				return err
			}
			c.success("wrote %s", path)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&force, "force", false, "overwrite an existing file")
	fs.StringVar(&conn.Name, "name", conn.Name, "profile name")
	fs.StringVar(&conn.Driver, "driver", conn.Driver, "sqlserver, postgres or mysql")
	fs.StringVar(&conn.Server, "server", conn.Server, "server host (host\\instance for SQL Server)")
	fs.IntVar(&conn.Port, "port", 0, "server port (default for the driver)")
	fs.StringVar(&conn.Database, "database", conn.Database, "database name")
	fs.StringVar(&conn.Username, "username", "", "user name; empty uses trusted authentication")
	fs.StringVar(&conn.Encrypt, "encrypt", conn.Encrypt, "driver TLS mode")

	return cmd
}
