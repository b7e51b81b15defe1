package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("door")
	assert.Error(t, err)
}

func TestKindFamily(t *testing.T) {
	assert.Equal(t, FamilyFrame, KindFrameSample.Family())
	assert.Equal(t, FamilyFrame, KindRegularFrame.Family())
	assert.Equal(t, FamilyShutter, KindShutterSample.Family())
	assert.Equal(t, FamilyShutter, KindRegularShutter.Family())
	assert.Equal(t, FamilyNone, Kind("").Family())
}

func TestFieldsForKind(t *testing.T) {
	frame := FieldsForKind(KindRegularFrame)
	assert.Equal(t, []Field{
		FieldSrNo, FieldLocationOfFitting, FieldBldg, FieldFlatNo, FieldArea,
		FieldActWidth, FieldActHeight, FieldWall, FieldSubframeSide, FieldRemark,
	}, frame)

	shutter := FieldsForKind(KindShutterSample)
	assert.Len(t, shutter, 15)
	assert.Equal(t, FieldSrNo, shutter[0])
	assert.Equal(t, FieldRemark, shutter[len(shutter)-1])

	assert.Empty(t, FieldsForKind(""))
}

func TestEditability(t *testing.T) {
	assert.False(t, IsEditable(KindRegularShutter, FieldSrNo))
	assert.False(t, IsEditable(KindRegularShutter, FieldLocation))
	assert.False(t, IsEditable(KindRegularFrame, FieldLocationOfFitting))
	assert.True(t, IsEditable(KindRegularShutter, FieldMinusWidth))
	assert.True(t, IsEditable(KindRegularShutter, FieldCustomArea))
	assert.True(t, IsEditable(KindFrameSample, FieldWall))

	// fields of the other family do not apply
	assert.False(t, IsEditable(KindRegularFrame, FieldWidth))
	assert.False(t, IsEditable(KindRegularShutter, FieldWall))
}

func TestNavigation(t *testing.T) {
	first, ok := FirstEditableField(KindRegularShutter)
	require.True(t, ok)
	assert.Equal(t, FieldBldg, first)

	next, ok := NextEditableField(KindRegularShutter, FieldBldg)
	require.True(t, ok)
	assert.Equal(t, FieldFlatNo, next)

	// sr_no and location are skipped when walking from the start
	next, ok = NextEditableField(KindRegularShutter, FieldSrNo)
	require.True(t, ok)
	assert.Equal(t, FieldBldg, next)

	assert.True(t, IsLastEditableField(KindRegularShutter, FieldRemark))
	assert.False(t, IsLastEditableField(KindRegularShutter, FieldActSqFt))
	_, ok = NextEditableField(KindRegularShutter, FieldRemark)
	assert.False(t, ok)

	next, ok = NextEditableField(KindRegularFrame, FieldSubframeSide)
	require.True(t, ok)
	assert.Equal(t, FieldRemark, next)
}

func TestRowGetSet(t *testing.T) {
	r := NewRow(KindRegularShutter)
	assert.NotEmpty(t, r.ID)

	assert.True(t, r.Set(FieldWidth, "909"))
	assert.Equal(t, "909", r.Value(FieldWidth))

	// frame-only column on a shutter row
	assert.False(t, r.Set(FieldWall, "190"))
	_, ok := r.Get(FieldWall)
	assert.False(t, ok)

	// serials are not settable through Set
	assert.False(t, r.Set(FieldSrNo, "A00001"))
	r.Serial = Serial{Number: "A00001", Status: SerialAssigned}
	assert.Equal(t, "A00001", r.Value(FieldSrNo))

	f := NewRow(KindRegularFrame)
	assert.True(t, f.Set(FieldActWidth, "986"))
	assert.Equal(t, "986", f.Frame.ActWidth)
	assert.Empty(t, f.Shutter.ActWidth)
}

func TestRowIsCopiedByValue(t *testing.T) {
	a := NewRow(KindRegularShutter)
	a.Set(FieldWidth, "900")
	b := a
	b.Set(FieldWidth, "1000")
	assert.Equal(t, "900", a.Value(FieldWidth))
}

func TestEffectiveArea(t *testing.T) {
	r := NewRow(KindRegularShutter)
	r.Area = "MD"
	assert.Equal(t, "MD", r.EffectiveArea())

	r.Area = CustomAreaCode
	r.CustomArea = " Balcony "
	assert.Equal(t, "Balcony", r.EffectiveArea())

	r.CustomArea = ""
	assert.Equal(t, "", r.EffectiveArea())
}

func TestRowIsEmpty(t *testing.T) {
	r := NewRow(KindRegularShutter)
	assert.True(t, r.IsEmpty())

	r.Serial = Serial{Number: "A00001", Status: SerialAssigned}
	r.CustomArea = "X"
	assert.True(t, r.IsEmpty(), "serial and custom area alone do not count")

	r.Remark = "check"
	assert.False(t, r.IsEmpty())
}

func TestRowItemRoundTrip(t *testing.T) {
	r := NewRow(KindRegularShutter)
	r.Serial = Serial{Number: "A00007", Status: SerialAssigned}
	r.Bldg = "A"
	r.FlatNo = "101"
	r.Area = CustomAreaCode
	r.CustomArea = "Balcony"
	r.Shutter.Width = "909"

	item := r.Item()
	assert.Equal(t, "A00007", item["sr_no"])
	assert.Equal(t, "Balcony", item["area"])
	assert.Equal(t, "909", item["width"])
	assert.NotContains(t, item, "custom_area")
	assert.NotContains(t, item, "height")

	back := RowFromItem(KindRegularShutter, item)
	assert.Equal(t, CustomAreaCode, back.Area)
	assert.Equal(t, "Balcony", back.CustomArea)
	assert.Equal(t, SerialAssigned, back.Serial.Status)
	assert.Equal(t, "909", back.Shutter.Width)
}

func TestAreaMinusConfig(t *testing.T) {
	cfg := AreaMinusConfig{"MD": {Width: "50", Height: "30"}}

	m, ok := cfg.Lookup(" MD ")
	require.True(t, ok)
	assert.Equal(t, "50", m.Width)

	_, ok = cfg.Lookup("")
	assert.False(t, ok)

	clone := cfg.Clone()
	clone["CB"] = AreaMinus{Width: "10"}
	assert.NotContains(t, cfg, "CB")

	cfg.Merge(AreaMinusConfig{"MD": {Width: "55", Height: "30"}, "KG": {}})
	assert.Equal(t, "55", cfg["MD"].Width)
	assert.Equal(t, []string{"KG", "MD"}, cfg.Codes())

	var nilCfg AreaMinusConfig
	_, ok = nilCfg.Lookup("MD")
	assert.False(t, ok)
}

func TestNewMeasurement(t *testing.T) {
	h := Header{
		MeasurementNumber: "MSR-00001",
		MeasurementDate:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		SiteLocation:      "Tower B",
	}
	p := Party{ID: 7, Name: "Acme Builders"}
	m := NewMeasurement(KindRegularFrame, h, p, []Item{{"bldg": "A"}})

	assert.Equal(t, KindRegularFrame, m.Type)
	assert.Equal(t, int64(7), m.PartyID)
	assert.Equal(t, "Acme Builders", m.PartyName)
	require.NotNil(t, m.SiteLocation)
	assert.Equal(t, "Tower B", *m.SiteLocation)
	assert.Nil(t, m.Notes)
	assert.Nil(t, m.Thickness)
	require.NotNil(t, m.MeasurementDate)

	rows := m.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Bldg)
}
