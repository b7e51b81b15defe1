package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innovadoor/sitemeasure/internal/project"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the configuration and area presets",
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a backup; the API token is left out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.ExportAllData(args[0], a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup, merging its area presets into the current ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			a.cfg = project.MergeBackup(a.cfg, b)
			if err := a.saveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s (version %s)\n", args[0], b.Version)
			return nil
		},
	}

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
