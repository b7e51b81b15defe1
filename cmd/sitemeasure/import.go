package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/export"
	"github.com/innovadoor/sitemeasure/internal/importer"
	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/project"
	"github.com/innovadoor/sitemeasure/internal/session"
)

const (
	maxRecentExports = 10
	serialWait       = 10 * time.Second
)

type importOptions struct {
	kind   string
	areas  string
	db     string
	party  int64
	site   string
	notes  string
	attach []string

	pdf    string
	labels string
	xlsx   string
	submit bool
}

func newImportCmd(a *app) *cobra.Command {
	var o importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Enter rows from a CSV or Excel file, then export or submit them",
		Long: `Reads measurement rows from a .csv or .xlsx file and enters every cell
into a new session exactly as if it were typed, so locations, minus values,
inch and rough-opening sizes and square footage are all derived.

Columns are matched by header name; derived columns in the file are ignored.
The measurement is sent to the API when api_url is configured and stored in
the local database otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.kind, "kind", "", "Measurement kind: frame_sample, shutter_sample, regular_frame, regular_shutter")
	f.StringVar(&o.areas, "areas", "", "Area presets file (.json or .yaml) overriding the configured presets")
	f.StringVar(&o.db, "db", "", "Database file when no API is configured (default from config)")
	f.Int64Var(&o.party, "party", 0, "Party ID (required with --submit)")
	f.StringVar(&o.site, "site", "", "Site location")
	f.StringVar(&o.notes, "notes", "", "Notes")
	f.StringArrayVar(&o.attach, "attach", nil, "Attach a PDF, image or document (repeatable)")
	f.StringVar(&o.pdf, "pdf", "", "Write the measurement sheet to this PDF")
	f.StringVar(&o.labels, "labels", "", "Write QR-coded row labels to this PDF")
	f.StringVar(&o.xlsx, "xlsx", "", "Write the rows to this Excel workbook")
	f.BoolVar(&o.submit, "submit", false, "Submit the measurement")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path string, o importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	kind := a.cfg.DefaultKind
	if o.kind != "" {
		k, err := model.ParseKind(o.kind)
		if err != nil {
			return err
		}
		kind = k
	}
	areas := a.cfg.AreaMinus
	if o.areas != "" {
		loaded, err := project.ImportAreaPresets(o.areas)
		if err != nil {
			return err
		}
		areas = loaded
	}

	result := importer.ImportFile(path, kind)
	for _, w := range result.Warnings {
		a.logger.Warn("import", zap.String("file", path), zap.String("warning", w))
	}
	for _, e := range result.Errors {
		a.logger.Error("import", zap.String("file", path), zap.String("error", e))
	}
	if len(result.Lines) == 0 {
		return fmt.Errorf("%s: no rows imported (%d errors)", path, len(result.Errors))
	}

	backend, release, err := a.openBackend(o.db)
	if err != nil {
		return err
	}
	defer release()

	sess := session.New(session.Config{
		Backend:      backend,
		Kind:         kind,
		Areas:        areas,
		HistoryDepth: a.cfg.HistoryDepth,
		Debounce:     a.debounce(),
		Logger:       a.logger,
	})
	defer sess.Close()

	if err := sess.Open(ctx); err != nil {
		return err
	}
	for _, n := range sess.Notices() {
		a.logger.Warn("reference data unavailable", zap.String("notice", n))
	}
	if err := a.fillHeader(sess, o); err != nil {
		return err
	}

	n, err := importer.Apply(sess, result.Lines)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Entered %d rows of %s from %s\n", n, kind, filepath.Base(path))

	var m model.Measurement
	if o.submit {
		res, err := sess.Submit(ctx)
		if err != nil {
			return err
		}
		m = res.Measurement
		fmt.Fprintf(out, "Submitted measurement %s (id %d)\n", m.MeasurementNumber, res.ID)
	} else {
		waitForSerials(ctx, sess, serialWait)
		m = sess.Draft()
	}

	return a.writeExports(out, m, o)
}

func (a *app) fillHeader(sess *session.Session, o importOptions) error {
	if o.party != 0 {
		if err := sess.SelectParty(o.party); err != nil {
			return fmt.Errorf("party %d: %w", o.party, err)
		}
	}
	if o.site != "" {
		if err := sess.SetHeader(model.HeaderSiteLocation, o.site); err != nil {
			return err
		}
	}
	if o.notes != "" {
		if err := sess.SetHeader(model.HeaderNotes, o.notes); err != nil {
			return err
		}
	}
	for _, p := range o.attach {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := sess.AddAttachment(filepath.Base(p), mime.TypeByExtension(filepath.Ext(p)), data); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeExports(out io.Writer, m model.Measurement, o importOptions) error {
	exports := []struct {
		path  string
		write func(string, model.Measurement) error
	}{
		{o.pdf, export.ExportPDF},
		{o.labels, export.ExportLabels},
		{o.xlsx, export.ExportExcel},
	}

	wrote := false
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path, m); err != nil {
			return fmt.Errorf("export %s: %w", e.path, err)
		}
		a.cfg.AddRecentExport(e.path, maxRecentExports)
		fmt.Fprintf(out, "Wrote %s\n", e.path)
		wrote = true
	}
	if wrote {
		if err := a.saveConfig(); err != nil {
			a.logger.Warn("could not record recent exports", zap.Error(err))
		}
	}
	return nil
}

// waitForSerials polls until no row has a serial request in flight.
func waitForSerials(ctx context.Context, sess *session.Session, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		pending := false
		for _, r := range sess.Rows() {
			if r.Serial.Status == model.SerialPending {
				pending = true
				break
			}
		}
		if !pending {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
