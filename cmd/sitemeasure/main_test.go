package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/project"
	"github.com/innovadoor/sitemeasure/internal/store"
)

// run executes the CLI with a config file in dir and returns its output.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "config.json")}, args...))
	err := root.Execute()
	return out.String(), err
}

func seedStore(t *testing.T, path string) {
	t.Helper()
	st, err := store.Open(path, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.AddParty(context.Background(), model.Party{Name: "Acme Builders"})
	require.NoError(t, err)
}

func TestPrefixSetAndShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "site.db")

	out, err := run(t, dir, "prefix", "set", "B", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "next B00001")

	out, err = run(t, dir, "prefix", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Serial prefix B")

	_, err = run(t, dir, "prefix", "set", " ", "--db", db)
	assert.Error(t, err)
}

func TestImportSubmitAndExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "site.db")
	seedStore(t, db)
	_, err := run(t, dir, "prefix", "set", "A", "--db", db)
	require.NoError(t, err)

	areas := filepath.Join(dir, "areas.yaml")
	require.NoError(t, os.WriteFile(areas, []byte("MD:\n  width: \"50\"\n  height: \"30\"\n"), 0644))
	csv := filepath.Join(dir, "flats.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Bldg,Flat No,Area,Width,Height\nA,101,MD,959,2280\nA,102,MD,940,2100\n"), 0644))
	pdf := filepath.Join(dir, "sheet.pdf")
	xlsx := filepath.Join(dir, "sheet.xlsx")

	out, err := run(t, dir, "import", csv,
		"--db", db, "--kind", "regular_shutter", "--areas", areas, "--party", "1",
		"--site", "Tower A", "--pdf", pdf, "--xlsx", xlsx, "--submit")
	require.NoError(t, err)
	assert.Contains(t, out, "Entered 2 rows")
	assert.Contains(t, out, "Submitted measurement MSR-00001 (id 1)")
	assert.FileExists(t, pdf)
	assert.FileExists(t, xlsx)

	st, err := store.Open(db, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()
	m, err := st.Measurement(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, m.Items, 2)
	assert.Equal(t, "A_101_MD", m.Items[0]["location"])
	assert.Equal(t, "909", m.Items[0]["minus_width"])
	assert.Equal(t, "22.0149", m.Items[0]["act_sq_ft"])
	assert.NotEqual(t, m.Items[0]["sr_no"], m.Items[1]["sr_no"])
	require.NotNil(t, m.SiteLocation)
	assert.Equal(t, "Tower A", *m.SiteLocation)

	cfg, err := project.LoadAppConfig(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{xlsx, pdf}, cfg.RecentExports)
}

func TestImportWithoutSubmitNeedsNoParty(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "site.db")
	csv := filepath.Join(dir, "frames.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Bldg,Flat No,Area,W,H\nB,201,KG,986,2310\n"), 0644))
	labels := filepath.Join(dir, "labels.pdf")

	out, err := run(t, dir, "import", csv, "--db", db, "--kind", "frame_sample", "--labels", labels)
	require.NoError(t, err)
	assert.Contains(t, out, "Entered 1 rows of Frame Sample")
	assert.FileExists(t, labels)
}

func TestImportRejects(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Bldg,Width\nA,wide\n"), 0644))

	_, err := run(t, dir, "import", csv, "--db", filepath.Join(dir, "x.db"))
	assert.ErrorContains(t, err, "no rows imported")

	_, err = run(t, dir, "import", csv, "--kind", "door")
	assert.Error(t, err)
}

func TestAreasImportExport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"MD": {"width": "50", "height": "30"}, "KG": {"width": "40"}}`), 0644))

	out, err := run(t, dir, "areas", "import", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 presets")

	out, err = run(t, dir, "areas", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "KG")
	assert.Contains(t, out, "MD")

	exported := filepath.Join(dir, "out.yaml")
	_, err = run(t, dir, "areas", "export", exported)
	require.NoError(t, err)
	got, err := project.ImportAreaPresets(exported)
	require.NoError(t, err)
	assert.Equal(t, model.AreaMinusConfig{
		"MD": {Width: "50", Height: "30"},
		"KG": {Width: "40"},
	}, got)
}

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultAppConfig()
	cfg.APIToken = "local-secret"
	cfg.AreaMinus = model.AreaMinusConfig{"MD": {Width: "50"}}
	require.NoError(t, project.SaveAppConfig(filepath.Join(dir, "config.json"), cfg))

	backup := filepath.Join(dir, "backup.json")
	_, err := run(t, dir, "backup", "export", backup)
	require.NoError(t, err)

	other := t.TempDir()
	_, err = run(t, other, "backup", "import", backup)
	require.NoError(t, err)

	restored, err := project.LoadAppConfig(filepath.Join(other, "config.json"))
	require.NoError(t, err)
	assert.Empty(t, restored.APIToken)
	assert.Equal(t, "50", restored.AreaMinus["MD"].Width)
}
