package model

import (
	"strings"

	"github.com/google/uuid"
)

// SerialStatus tracks the lifecycle of a row's serial number.
type SerialStatus int

const (
	SerialNone     SerialStatus = iota // never requested
	SerialPending                      // request in flight
	SerialAssigned                     // issued; never changes afterwards
	SerialFailed                       // last request failed
)

func (s SerialStatus) String() string {
	switch s {
	case SerialPending:
		return "pending"
	case SerialAssigned:
		return "assigned"
	case SerialFailed:
		return "failed"
	default:
		return "none"
	}
}

// Serial is a row's sr_no together with its assignment state.
type Serial struct {
	Number string       `json:"number,omitempty"`
	Status SerialStatus `json:"status"`
	Err    string       `json:"error,omitempty"`
}

// Assigned reports whether the serial has been issued.
func (s Serial) Assigned() bool {
	return s.Status == SerialAssigned && s.Number != ""
}

// FramePart holds the columns specific to frame kinds.
type FramePart struct {
	LocationOfFitting string `json:"location_of_fitting,omitempty"`
	ActWidth          string `json:"act_width,omitempty"`
	ActHeight         string `json:"act_height,omitempty"`
	Wall              string `json:"wall,omitempty"`
	SubframeSide      string `json:"subframe_side,omitempty"`
}

// ShutterPart holds the columns specific to shutter kinds.
type ShutterPart struct {
	Location    string `json:"location,omitempty"`
	Width       string `json:"width,omitempty"`
	Height      string `json:"height,omitempty"`
	MinusWidth  string `json:"minus_width,omitempty"`
	MinusHeight string `json:"minus_height,omitempty"`
	ActWidth    string `json:"act_width,omitempty"`
	ActHeight   string `json:"act_height,omitempty"`
	ROWidth     string `json:"ro_width,omitempty"`
	ROHeight    string `json:"ro_height,omitempty"`
	ActSqFt     string `json:"act_sq_ft,omitempty"`
}

// CustomAreaCode is the area value that switches a row to its free-text area.
const CustomAreaCode = "custom"

// Row is one line of a measurement sheet. Only the part matching
// Kind.Family() carries data. Every field is a plain string so a Row copies
// by value without sharing anything mutable.
type Row struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Serial   Serial `json:"serial"`
	Revision int    `json:"revision"`

	Bldg       string `json:"bldg,omitempty"`
	FlatNo     string `json:"flat_no,omitempty"`
	Area       string `json:"area,omitempty"`
	CustomArea string `json:"custom_area,omitempty"`
	Remark     string `json:"remark,omitempty"`

	Frame   FramePart   `json:"frame"`
	Shutter ShutterPart `json:"shutter"`
}

// NewRow returns an empty row of the given kind with a fresh identity.
func NewRow(k Kind) Row {
	return Row{
		ID:   uuid.New().String(),
		Kind: k,
	}
}

// EffectiveArea is the area code used for lookups and location labels: the
// custom area when the area cell is "custom", otherwise the area itself.
func (r Row) EffectiveArea() string {
	if r.Area == CustomAreaCode {
		return strings.TrimSpace(r.CustomArea)
	}
	return strings.TrimSpace(r.Area)
}

func (r *Row) ref(f Field) *string {
	switch f {
	case FieldBldg:
		return &r.Bldg
	case FieldFlatNo:
		return &r.FlatNo
	case FieldArea:
		return &r.Area
	case FieldCustomArea:
		return &r.CustomArea
	case FieldRemark:
		return &r.Remark
	}
	switch r.Kind.Family() {
	case FamilyFrame:
		switch f {
		case FieldLocationOfFitting:
			return &r.Frame.LocationOfFitting
		case FieldActWidth:
			return &r.Frame.ActWidth
		case FieldActHeight:
			return &r.Frame.ActHeight
		case FieldWall:
			return &r.Frame.Wall
		case FieldSubframeSide:
			return &r.Frame.SubframeSide
		}
	case FamilyShutter:
		switch f {
		case FieldLocation:
			return &r.Shutter.Location
		case FieldWidth:
			return &r.Shutter.Width
		case FieldHeight:
			return &r.Shutter.Height
		case FieldMinusWidth:
			return &r.Shutter.MinusWidth
		case FieldMinusHeight:
			return &r.Shutter.MinusHeight
		case FieldActWidth:
			return &r.Shutter.ActWidth
		case FieldActHeight:
			return &r.Shutter.ActHeight
		case FieldROWidth:
			return &r.Shutter.ROWidth
		case FieldROHeight:
			return &r.Shutter.ROHeight
		case FieldActSqFt:
			return &r.Shutter.ActSqFt
		}
	}
	return nil
}

// Get returns the value of f. The bool is false when the row's kind has no
// such field. sr_no reads the serial number.
func (r Row) Get(f Field) (string, bool) {
	if f == FieldSrNo {
		return r.Serial.Number, r.Kind.Valid()
	}
	p := r.ref(f)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Value is Get without the applicability flag.
func (r Row) Value(f Field) string {
	v, _ := r.Get(f)
	return v
}

// Set writes v into f and reports whether the field exists for the row's
// kind. Serial numbers are not settable here; editability is the caller's
// concern.
func (r *Row) Set(f Field, v string) bool {
	p := r.ref(f)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// IsEmpty reports whether no cell of the row holds a value. The serial and
// the custom area do not count.
func (r Row) IsEmpty() bool {
	for _, f := range FieldsForKind(r.Kind) {
		if f == FieldSrNo {
			continue
		}
		if strings.TrimSpace(r.Value(f)) != "" {
			return false
		}
	}
	return true
}

// Item is the wire form of a row: field name to cell text.
type Item map[string]string

// Item converts the row for submission. The area carries the effective area
// and custom_area is dropped; empty cells are omitted.
func (r Row) Item() Item {
	item := make(Item)
	for _, f := range FieldsForKind(r.Kind) {
		v := r.Value(f)
		if f == FieldArea {
			v = r.EffectiveArea()
		}
		if v != "" {
			item[string(f)] = v
		}
	}
	return item
}

// RowFromItem builds a row of kind k from its wire form. Unknown keys are
// ignored; an area outside AreaOptions becomes a custom area.
func RowFromItem(k Kind, item Item) Row {
	r := NewRow(k)
	for key, v := range item {
		f := Field(key)
		switch f {
		case FieldSrNo:
			if v != "" {
				r.Serial = Serial{Number: v, Status: SerialAssigned}
			}
		case FieldArea:
			if v != "" && !IsAreaOption(v) {
				r.Area = CustomAreaCode
				r.CustomArea = v
			} else {
				r.Area = v
			}
		case FieldCustomArea:
		default:
			r.Set(f, v)
		}
	}
	return r
}
