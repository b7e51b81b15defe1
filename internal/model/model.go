package model

import "time"

// Header holds the sheet-level fields entered above the rows.
type Header struct {
	MeasurementNumber string    `json:"measurement_number"`
	MeasurementDate   time.Time `json:"measurement_date"`
	SiteLocation      string    `json:"site_location"`
	Notes             string    `json:"notes"`
}

// HeaderField names a settable header field.
type HeaderField string

const (
	HeaderMeasurementNumber HeaderField = "measurement_number"
	HeaderMeasurementDate   HeaderField = "measurement_date"
	HeaderSiteLocation      HeaderField = "site_location"
	HeaderNotes             HeaderField = "notes"
)

// ContactPerson is one contact of a party.
type ContactPerson struct {
	Name         string `json:"name"`
	Designation  string `json:"designation,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	Email        string `json:"email,omitempty"`
}

// SiteAddress is one project site of a party.
type SiteAddress struct {
	ProjectSiteName   string `json:"project_site_name,omitempty"`
	SiteAddress       string `json:"site_address,omitempty"`
	SiteContactPerson string `json:"site_contact_person,omitempty"`
	SiteMobileNo      string `json:"site_mobile_no,omitempty"`
}

// Party is the customer a measurement is taken for.
type Party struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	ContactPerson  string          `json:"contact_person,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	ContactPersons []ContactPerson `json:"contact_persons,omitempty"`
	SiteAddresses  []SiteAddress   `json:"site_addresses,omitempty"`
}

// Product is a catalogue entry for one category ("Frame" or "Shutter").
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"product_name"`
	Category string `json:"product_category"`
}

// Design is an active shutter design.
type Design struct {
	ID       int64  `json:"id"`
	Name     string `json:"design_name"`
	Code     string `json:"design_code,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Attachment is a file sent with a measurement. Content is base64.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Measurement is the submission payload.
type Measurement struct {
	Type              Kind         `json:"measurement_type"`
	MeasurementNumber string       `json:"measurement_number,omitempty"`
	PartyID           int64        `json:"party_id"`
	PartyName         string       `json:"party_name"`
	Thickness         *string      `json:"thickness"`
	MeasurementDate   *time.Time   `json:"measurement_date"`
	SiteLocation      *string      `json:"site_location"`
	Items             []Item       `json:"items"`
	Notes             *string      `json:"notes"`
	Attachments       []Attachment `json:"attachments,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewMeasurement assembles the payload from a header, party and items.
func NewMeasurement(k Kind, h Header, p Party, items []Item) Measurement {
	m := Measurement{
		Type:              k,
		MeasurementNumber: h.MeasurementNumber,
		PartyID:           p.ID,
		PartyName:         p.Name,
		SiteLocation:      optional(h.SiteLocation),
		Items:             items,
		Notes:             optional(h.Notes),
	}
	if !h.MeasurementDate.IsZero() {
		d := h.MeasurementDate.UTC()
		m.MeasurementDate = &d
	}
	return m
}

// Rows converts the payload items back to sheet rows.
func (m Measurement) Rows() []Row {
	rows := make([]Row, len(m.Items))
	for i, it := range m.Items {
		rows[i] = RowFromItem(m.Type, it)
	}
	return rows
}
