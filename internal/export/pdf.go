// Package export renders a measurement to PDF sheets, QR-coded row labels
// and spreadsheets.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// ErrNoRows is returned when a measurement has nothing to export.
var ErrNoRows = errors.New("export: measurement has no rows")

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 12.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 14.0
	rowHeight    = 6.0
	cellPadding  = 3.0
)

// filledRows returns the rows of m that hold at least one value.
func filledRows(m model.Measurement) ([]model.Row, error) {
	if !m.Type.Valid() {
		return nil, fmt.Errorf("export: unknown measurement kind %q", m.Type)
	}
	var rows []model.Row
	for _, r := range m.Rows() {
		if !r.IsEmpty() || r.Serial.Number != "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// ExportPDF writes the measurement as a landscape table with one column per
// field of its kind, repeating the column header on every page.
func ExportPDF(path string, m model.Measurement) error {
	rows, err := filledRows(m)
	if err != nil {
		return err
	}
	fields := model.FieldsForKind(m.Type)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(marginLeft, pageHeight-marginBottom+4)
		footer := fmt.Sprintf("%s  |  page %d", m.MeasurementNumber, pdf.PageNo())
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	y := renderHeaderBlock(pdf, m)

	widths := columnWidths(pdf, m.Type, fields, rows)
	y = renderColumnHeader(pdf, m.Type, fields, widths, y)

	pdf.SetFont("Helvetica", "", 8)
	for i, r := range rows {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = renderColumnHeader(pdf, m.Type, fields, widths, marginTop)
			pdf.SetFont("Helvetica", "", 8)
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x := marginLeft
		for j, f := range fields {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[j], rowHeight, fitText(pdf, cellText(r, f), widths[j]), "1", 0, "C", true, 0, "")
			x += widths[j]
		}
		y += rowHeight
	}

	if y+3*rowHeight > pageHeight-marginBottom {
		pdf.AddPage()
		y = marginTop
	}
	renderTotals(pdf, m.Type, rows, y+4)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render measurement pdf: %w", err)
	}
	return pdf.OutputFileAndClose(path)
}

// renderHeaderBlock draws the title and header fields and returns the next y.
func renderHeaderBlock(pdf *fpdf.Fpdf, m model.Measurement) float64 {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 8, m.Type.String()+" Measurement", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	pdf.Line(marginLeft, marginTop+9, pageWidth-marginRight, marginTop+9)

	date := ""
	if m.MeasurementDate != nil {
		date = m.MeasurementDate.Format("02 Jan 2006")
	}
	items := []struct {
		label string
		value string
	}{
		{"Measurement No", m.MeasurementNumber},
		{"Party", m.PartyName},
		{"Date", date},
		{"Site", deref(m.SiteLocation)},
	}

	y := marginTop + 11
	half := (pageWidth - marginLeft - marginRight) / 2
	for i, item := range items {
		x := marginLeft + float64(i%2)*half
		if i > 0 && i%2 == 0 {
			y += 5
		}
		pdf.SetXY(x, y)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(30, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(half-32, 5, item.value, "", 0, "L", false, 0, "")
	}
	y += 6

	if notes := deref(m.Notes); notes != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(marginLeft, y)
		pdf.MultiCell(pageWidth-marginLeft-marginRight, 4, "Notes: "+notes, "", "L", false)
		y = pdf.GetY() + 1
	}
	return y + 2
}

// renderColumnHeader draws the shaded column titles at y and returns the
// first row position below them.
func renderColumnHeader(pdf *fpdf.Fpdf, k model.Kind, fields []model.Field, widths []float64, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	x := marginLeft
	for i, f := range fields {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], rowHeight+1, fitText(pdf, model.Label(k, f), widths[i]), "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	return y + rowHeight + 1
}

// columnWidths sizes each column to its widest cell and scales the set to
// the printable width.
func columnWidths(pdf *fpdf.Fpdf, k model.Kind, fields []model.Field, rows []model.Row) []float64 {
	widths := make([]float64, len(fields))
	total := 0.0
	for i, f := range fields {
		pdf.SetFont("Helvetica", "B", 8)
		w := pdf.GetStringWidth(model.Label(k, f))
		pdf.SetFont("Helvetica", "", 8)
		for _, r := range rows {
			w = math.Max(w, pdf.GetStringWidth(cellText(r, f)))
		}
		widths[i] = w + 2*cellPadding
		total += widths[i]
	}

	scale := (pageWidth - marginLeft - marginRight) / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// renderTotals prints the row count, plus the summed area for shutters.
func renderTotals(pdf *fpdf.Fpdf, k model.Kind, rows []model.Row, y float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(60, 5, fmt.Sprintf("Total rows: %d", len(rows)), "", 0, "L", false, 0, "")

	if k.Family() != model.FamilyShutter {
		return
	}
	sum, counted := totalSqFt(rows)
	pdf.CellFormat(80, 5, fmt.Sprintf("Total Act Sq. Ft.: %s (%d rows)", sum.StringFixed(4), counted), "", 0, "L", false, 0, "")
}

// totalSqFt sums the act_sq_ft cells that parse as numbers.
func totalSqFt(rows []model.Row) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, r := range rows {
		if d, ok := units.ParseNumber(r.Shutter.ActSqFt); ok {
			sum = sum.Add(d)
			n++
		}
	}
	return sum, n
}

// fitText truncates s with an ellipsis until it fits in a cell of width w.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 1
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// cellText is what a row shows in column f; custom areas show their name.
func cellText(r model.Row, f model.Field) string {
	if f == model.FieldArea {
		return r.EffectiveArea()
	}
	return r.Value(f)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
