package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Settings are small persisted overrides (console port, output directory,
// tick rate) layered on top of the TOML configuration by the export command.
func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Persisted per-machine overrides",
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openSettings()
			if store == nil {
				return errors.New("settings store is unavailable")
			}
			defer store.Close()

			value := store.Get(args[0], "")
			if value == "" {
				return fmt.Errorf("no value stored for %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store an override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openSettings()
			if store == nil {
				return errors.New("settings store is unavailable")
			}
			defer store.Close()

			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})

	return settingsCmd
}
