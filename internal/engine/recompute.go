package engine

import (
	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// derive computes one derived field from the current cells of r. An empty
// result means the inputs are incomplete or invalid and the cell is cleared.
func derive(r model.Row, f model.Field, areas model.AreaMinusConfig) string {
	var (
		v  string
		ok bool
	)
	switch f {
	case model.FieldLocation, model.FieldLocationOfFitting:
		v, ok = units.ComposeKey(r.Bldg, r.FlatNo, r.EffectiveArea())
	case model.FieldMinusWidth:
		v, ok = minus(r.Shutter.Width, r.EffectiveArea(), areas, func(m model.AreaMinus) string { return m.Width })
	case model.FieldMinusHeight:
		v, ok = minus(r.Shutter.Height, r.EffectiveArea(), areas, func(m model.AreaMinus) string { return m.Height })
	case model.FieldActWidth:
		v, ok = units.InchesText(r.Shutter.MinusWidth)
	case model.FieldActHeight:
		v, ok = units.InchesText(r.Shutter.MinusHeight)
	case model.FieldROWidth:
		v, ok = units.ROText(r.Shutter.ActWidth)
	case model.FieldROHeight:
		v, ok = units.ROText(r.Shutter.ActHeight)
	case model.FieldActSqFt:
		v, ok = units.SquareFeetText(r.Shutter.MinusWidth, r.Shutter.MinusHeight)
	}
	if !ok {
		return ""
	}
	return v
}

func minus(raw, area string, areas model.AreaMinusConfig, pick func(model.AreaMinus) string) (string, bool) {
	m, ok := areas.Lookup(area)
	if !ok {
		return "", false
	}
	return units.SubtractText(raw, pick(m))
}

func apply(r *model.Row, fields []model.Field, areas model.AreaMinusConfig) {
	for _, f := range fields {
		r.Set(f, derive(*r, f, areas))
	}
}

// ApplyEdit sets field to value on a copy of row and recomputes everything
// downstream of it. Edits to fields that are not editable for the row's kind
// are rejected: the row comes back unchanged with false.
func ApplyEdit(row model.Row, field model.Field, value string, areas model.AreaMinusConfig) (model.Row, bool) {
	if !model.IsEditable(row.Kind, field) {
		return row, false
	}
	out := row
	out.Set(field, value)
	if field == model.FieldArea && value != model.CustomAreaCode {
		out.CustomArea = ""
	}
	apply(&out, Resolve(out.Kind, field), areas)
	out.Revision++
	return out, true
}

// Recompute derives every computed field of row from its inputs. Manual
// overrides of derived cells are replaced. A row that is already consistent
// comes back identical, revision included.
func Recompute(row model.Row, areas model.AreaMinusConfig) model.Row {
	out := row
	apply(&out, Derived(out.Kind), areas)
	if out != row {
		out.Revision = row.Revision + 1
	}
	return out
}

// ApplyAreaConfig refreshes the minus values of a shutter row whose area has
// a configured pair, then everything downstream of them. Other rows, and rows
// whose area is not configured, are returned unchanged.
func ApplyAreaConfig(row model.Row, areas model.AreaMinusConfig) model.Row {
	if row.Kind.Family() != model.FamilyShutter {
		return row
	}
	if _, ok := areas.Lookup(row.EffectiveArea()); !ok {
		return row
	}
	g := graphFor(row.Kind)
	fields := append([]model.Field{model.FieldMinusWidth, model.FieldMinusHeight},
		g.closure(model.FieldMinusWidth, model.FieldMinusHeight)...)

	out := row
	apply(&out, fields, areas)
	if out != row {
		out.Revision = row.Revision + 1
	}
	return out
}
