// sitemeasure - door frame and shutter site measurement tool
//
// Runs measurement sessions from the command line, serves the reference
// production backend over HTTP, and manages area presets.
//
// Build:
//   go build -o sitemeasure ./cmd/sitemeasure
//
// Examples:
//   sitemeasure serve --db site.db --addr :8080
//   sitemeasure prefix set A --db site.db
//   sitemeasure import flats.xlsx --kind regular_shutter --party 1 --pdf sheet.pdf --submit

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/project"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    model.AppConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "sitemeasure",
		Short: "Site measurement entry for door frames and shutters",
		Long: `sitemeasure records door frame and shutter measurements taken on site.

Imported rows go through the same cascade as typed cells: minus values come
from the area presets, actual and rough-opening sizes in inches and the
square footage are derived, and every row gets a serial number from the
backend. Measurements can be exported to PDF, QR labels or Excel and
submitted to the production backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", project.DefaultConfigPath(), "Config file (.json or .yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newServeCmd(a),
		newPrefixCmd(a),
		newImportCmd(a),
		newAreasCmd(a),
		newBackupCmd(a),
	)
	return root
}

// setup loads the config and builds the logger.
func (a *app) setup() error {
	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) saveConfig() error {
	return project.SaveAppConfig(a.configPath, a.cfg)
}

func (a *app) debounce() time.Duration {
	return time.Duration(a.cfg.DebounceMillis) * time.Millisecond
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
