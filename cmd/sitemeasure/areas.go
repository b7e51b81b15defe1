package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/project"
)

func newAreasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Manage the area minus presets",
		Long: `Area presets map an area code (MD, KG, CB, ...) to the width and height
in mm subtracted from a shutter's raw size.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %8s %8s\n", "AREA", "WIDTH", "HEIGHT")
			for _, code := range a.cfg.AreaMinus.Codes() {
				m := a.cfg.AreaMinus[code]
				fmt.Fprintf(out, "%-12s %8s %8s\n", code, m.Width, m.Height)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the presets to a .json or .yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.ExportAreaPresets(args[0], a.cfg.AreaMinus); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d presets to %s\n", len(a.cfg.AreaMinus), args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge presets from a file into the config; imported codes win",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := project.ImportAreaPresets(args[0])
			if err != nil {
				return err
			}
			merged := a.cfg.AreaMinus.Clone()
			merged.Merge(areas)
			a.cfg.AreaMinus = merged
			if err := a.saveConfig(); err != nil {
				return err
			}
			a.logger.Info("area presets imported", zap.String("file", args[0]), zap.Int("count", len(areas)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d presets (%d total)\n", len(areas), len(merged))
			return nil
		},
	}

	cmd.AddCommand(listCmd, exportCmd, importCmd)
	return cmd
}
