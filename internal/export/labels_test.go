package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovadoor/sitemeasure/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestMeasurement()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("labels PDF was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("labels PDF is empty")
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	m := buildTestMeasurement()
	m.Items = nil
	for i := 0; i < labelsPerPage+5; i++ {
		m.Items = append(m.Items, model.Item{"bldg": "C", "width": "800"})
	}

	if err := ExportLabels(filepath.Join(t.TempDir(), "many.pdf"), m); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}

func TestExportLabels_Empty(t *testing.T) {
	m := model.NewMeasurement(model.KindFrameSample, model.Header{}, model.Party{}, nil)
	if err := ExportLabels(filepath.Join(t.TempDir(), "none.pdf"), m); err == nil {
		t.Fatal("expected error for measurement without rows")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestMeasurement())
	require.Len(t, labels, 2, "the empty row gets no label")

	assert.Equal(t, LabelInfo{
		Serial:      "A00001",
		Location:    "A_101_MD",
		Type:        "regular_shutter",
		Measurement: "MSR-00007",
		Width:       "959",
		Height:      "2280",
		ActWidth:    "909",
		ActHeight:   "2250",
		ROWidth:     "36",
		ROHeight:    "88.5",
	}, labels[0])
}

func TestCollectLabelInfos_Frame(t *testing.T) {
	m := model.NewMeasurement(model.KindRegularFrame, model.Header{}, model.Party{}, []model.Item{
		{"sr_no": "F00009", "location_of_fitting": "B_201_KG", "act_width": "986", "act_height": "2310"},
	})
	labels := CollectLabelInfos(m)
	require.Len(t, labels, 1)
	assert.Equal(t, "B_201_KG", labels[0].Location)
	assert.Equal(t, "986", labels[0].Width)
	assert.Empty(t, labels[0].ROWidth)
}

func TestLabelInfoJSON(t *testing.T) {
	labels := CollectLabelInfos(buildTestMeasurement())

	data, err := json.Marshal(labels[1])
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "A00002", decoded["sr_no"])
	assert.Equal(t, "940", decoded["width_mm"])
	_, hasRO := decoded["ro_width_in"]
	assert.False(t, hasRO, "empty sizes are omitted")
}
