package main

import (
	"errors"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/config"
)

func newSecretCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage profile passwords in the OS keyring",
		Long: `Passwords for profiles that do not use trusted authentication are kept in
the operating-system keyring, never in the config file.`,
	}

	var stdin bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the password of the selected profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := c.credentialProfile()
			if err != nil {
				return err
			}

			var password string
			if stdin {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = strings.TrimRight(string(b), "\r\n")
			} else {
				password, err = pterm.DefaultInteractiveTextInput.
					WithMask("*").
					Show("Password for " + conn.Username + "@" + conn.Server)
				if err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("empty password")
			}

			if err := config.SetPassword(conn, password); err != nil {
				return err
			}
			c.success("stored password for profile %s", conn.Name)
			return nil
		},
	}
	set.Flags().BoolVar(&stdin, "stdin", false, "read the password from stdin")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password of the selected profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := c.credentialProfile()
			if err != nil {
				return err
			}
			if err := config.DeletePassword(conn); err != nil {
				return err
			}
			c.success("removed password for profile %s", conn.Name)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

func (c *cli) credentialProfile() (config.Connection, error) {
	conn, err := c.cfg.Select(c.profile)
	if err != nil {
		return config.Connection{}, &app.ErrConfig{Cause: err}
	}
	if conn.Trusted {
		return config.Connection{}, &app.ErrConfig{Cause: errors.New("profile " + conn.Name + " uses trusted authentication")}
	}
	return conn, nil
}
