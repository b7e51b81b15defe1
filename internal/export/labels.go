package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/innovadoor/sitemeasure/internal/model"
)

// LabelInfo holds the data encoded into each row label's QR code.
type LabelInfo struct {
	Serial      string `json:"sr_no"`
	Location    string `json:"location"`
	Type        string `json:"measurement_type"`
	Measurement string `json:"measurement_number,omitempty"`
	Width       string `json:"width_mm,omitempty"`
	Height      string `json:"height_mm,omitempty"`
	ActWidth    string `json:"act_width_mm,omitempty"`
	ActHeight   string `json:"act_height_mm,omitempty"`
	ROWidth     string `json:"ro_width_in,omitempty"`
	ROHeight    string `json:"ro_height_in,omitempty"`
}

// Avery 5160-compatible sheet: 3 columns x 10 rows of 66.7 x 25.4 mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos extracts one label per non-empty row of m.
func CollectLabelInfos(m model.Measurement) []LabelInfo {
	rows, err := filledRows(m)
	if err != nil {
		return nil
	}
	labels := make([]LabelInfo, 0, len(rows))
	for _, r := range rows {
		info := LabelInfo{
			Serial:      r.Serial.Number,
			Type:        string(m.Type),
			Measurement: m.MeasurementNumber,
		}
		switch m.Type.Family() {
		case model.FamilyFrame:
			info.Location = r.Frame.LocationOfFitting
			info.Width = r.Frame.ActWidth
			info.Height = r.Frame.ActHeight
		case model.FamilyShutter:
			info.Location = r.Shutter.Location
			info.Width = r.Shutter.Width
			info.Height = r.Shutter.Height
			info.ActWidth = r.Shutter.MinusWidth
			info.ActHeight = r.Shutter.MinusHeight
			info.ROWidth = r.Shutter.ROWidth
			info.ROHeight = r.Shutter.ROHeight
		}
		labels = append(labels, info)
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per measured row, laid
// out on a standard label sheet.
func ExportLabels(path string, m model.Measurement) error {
	if _, err := filledRows(m); err != nil {
		return err
	}
	labels := CollectLabelInfos(m)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("render label %d (%s): %w", i+1, label.Serial, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, n int, info LabelInfo) error {
	// cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", n)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	serial := info.Serial
	if serial == "" {
		serial = "(no serial)"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fitText(pdf, serial, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fitText(pdf, info.Location, textW), "", 1, "L", false, 0, "")

	if info.Width != "" || info.Height != "" {
		pdf.SetXY(textX, y+labelPadding+9)
		pdf.CellFormat(textW, 3.5, fmt.Sprintf("%s x %s mm", orDash(info.Width), orDash(info.Height)), "", 1, "L", false, 0, "")
	}

	if info.ROWidth != "" || info.ROHeight != "" {
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(textX, y+labelPadding+13)
		pdf.CellFormat(textW, 3, fmt.Sprintf("RO %s x %s in", orDash(info.ROWidth), orDash(info.ROHeight)), "", 1, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return pdf.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
