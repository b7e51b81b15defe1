package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innovadoor/sitemeasure/internal/store"
)

func printPrefix(cmd *cobra.Command, st *store.Store) error {
	prefix, next, err := st.SerialPrefix(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serial prefix %s, next %s%05d\n", prefix, prefix, next)
	return nil
}

func newPrefixCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "prefix",
		Short: "Manage the serial number prefix of the local database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default from config)")

	setCmd := &cobra.Command{
		Use:   "set <prefix>",
		Short: "Set the serial prefix; a new prefix restarts numbering at 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetSerialPrefix(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printPrefix(cmd, st)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the serial prefix and the next number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			return printPrefix(cmd, st)
		},
	}

	cmd.AddCommand(setCmd, showCmd)
	return cmd
}
