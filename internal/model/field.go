package model

// Field is the stable wire name of a sheet column.
type Field string

const (
	FieldSrNo              Field = "sr_no"
	FieldLocation          Field = "location"
	FieldLocationOfFitting Field = "location_of_fitting"
	FieldBldg              Field = "bldg"
	FieldFlatNo            Field = "flat_no"
	FieldArea              Field = "area"
	FieldCustomArea        Field = "custom_area"
	FieldWidth             Field = "width"
	FieldHeight            Field = "height"
	FieldMinusWidth        Field = "minus_width"
	FieldMinusHeight       Field = "minus_height"
	FieldActWidth          Field = "act_width"
	FieldActHeight         Field = "act_height"
	FieldROWidth           Field = "ro_width"
	FieldROHeight          Field = "ro_height"
	FieldActSqFt           Field = "act_sq_ft"
	FieldWall              Field = "wall"
	FieldSubframeSide      Field = "subframe_side"
	FieldRemark            Field = "remark"
)

// Role describes where a field's value comes from.
type Role int

const (
	RoleInput      Role = iota // typed by the user
	RoleDerived                // computed from other fields
	RoleIdentifier             // issued by the serial sequence
)

func (r Role) String() string {
	switch r {
	case RoleDerived:
		return "derived"
	case RoleIdentifier:
		return "identifier"
	default:
		return "input"
	}
}

// FieldSpec describes one column for one field family.
type FieldSpec struct {
	Name        Field
	Role        Role
	Editable    bool
	Label       string
	Placeholder string
}

var frameFields = []FieldSpec{
	{FieldSrNo, RoleIdentifier, false, "Sr No", "User-specific serial (e.g., A00001)"},
	{FieldLocationOfFitting, RoleDerived, false, "Location of Fitting", "Auto-generated from BLDG/Wings, Flat No, and Area"},
	{FieldBldg, RoleInput, true, "BLDG/Wings", "Building letter (e.g., A, B, C)"},
	{FieldFlatNo, RoleInput, true, "Flat No", "Flat number (e.g., 102, 103)"},
	{FieldArea, RoleInput, true, "Area", "Area code (e.g., MD, CHB, CB, MB)"},
	{FieldActWidth, RoleInput, true, "ACT Width (MM)", "Actual width in mm (e.g., 986, 898, 900)"},
	{FieldActHeight, RoleInput, true, "ACT Height (MM)", "Actual height in mm (e.g., 2310)"},
	{FieldWall, RoleInput, true, "WALL", `Wall thickness (e.g., 190, 4.5")`},
	{FieldSubframeSide, RoleInput, true, "Subframe Side", "Subframe side (e.g., L+T, R+T)"},
	{FieldRemark, RoleInput, true, "Remark", "Enter any remarks or notes"},
}

// The minus, act and RO columns are derived but stay editable: a manual value
// is an override that cascades downstream until an upstream edit replaces it.
var shutterFields = []FieldSpec{
	{FieldSrNo, RoleIdentifier, false, "Sr No", "User-specific serial (e.g., A00001)"},
	{FieldLocation, RoleDerived, false, "Location", "Auto-generated from BLDG/Wings, Flat No, and Area"},
	{FieldBldg, RoleInput, true, "BLDG/Wings", "Building (e.g., A)"},
	{FieldFlatNo, RoleInput, true, "Flat No", "Flat number (e.g., 101, 402, 203)"},
	{FieldArea, RoleInput, true, "Area", "Area (e.g., MD)"},
	{FieldWidth, RoleInput, true, "Width", "Width in mm (e.g., 909, 906)"},
	{FieldHeight, RoleInput, true, "Height", "Height in mm (e.g., 2250, 2238)"},
	{FieldMinusWidth, RoleDerived, true, "Act Width(mm)", "Minus value for Width"},
	{FieldMinusHeight, RoleDerived, true, "Act Height (mm)", "Minus value for Height"},
	{FieldActWidth, RoleDerived, true, "Act Width (inch)", "Actual width in inches (e.g., 35.51, 35.31)"},
	{FieldActHeight, RoleDerived, true, "Act Height (inch)", "Actual height in inches (e.g., 88.82, 89.25)"},
	{FieldROWidth, RoleDerived, true, "RO Width(inches)", "RO Width(inches)"},
	{FieldROHeight, RoleDerived, true, "RO Height(inches)", "RO Height(inches)"},
	{FieldActSqFt, RoleDerived, true, "Act Sq. Ft.", "Calculated from Act Width(mm) and Act Height (mm)"},
	{FieldRemark, RoleInput, true, "Remark", "Enter any remarks or notes"},
}

// customAreaSpec is the free-text area used when the area cell is "custom".
// It belongs to both families but is rendered inside the area column.
var customAreaSpec = FieldSpec{FieldCustomArea, RoleInput, true, "Custom Area", "Custom area code"}

func familySpecs(f Family) []FieldSpec {
	switch f {
	case FamilyFrame:
		return frameFields
	case FamilyShutter:
		return shutterFields
	default:
		return nil
	}
}

// FieldsForKind returns the column order for a kind.
func FieldsForKind(k Kind) []Field {
	specs := familySpecs(k.Family())
	fields := make([]Field, len(specs))
	for i, s := range specs {
		fields[i] = s.Name
	}
	return fields
}

// Spec returns the column description of f for kind k.
func Spec(k Kind, f Field) (FieldSpec, bool) {
	if f == FieldCustomArea && k.Valid() {
		return customAreaSpec, true
	}
	for _, s := range familySpecs(k.Family()) {
		if s.Name == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Applies reports whether kind k has field f.
func Applies(k Kind, f Field) bool {
	_, ok := Spec(k, f)
	return ok
}

// IsEditable reports whether the user may type into f for kind k. Serial
// numbers and the generated location columns are never editable.
func IsEditable(k Kind, f Field) bool {
	s, ok := Spec(k, f)
	return ok && s.Editable
}

// Label returns the column header for f under kind k, or the raw name.
func Label(k Kind, f Field) string {
	if s, ok := Spec(k, f); ok {
		return s.Label
	}
	return string(f)
}

// FirstEditableField returns the first column a cursor lands on in a new row.
func FirstEditableField(k Kind) (Field, bool) {
	for _, s := range familySpecs(k.Family()) {
		if s.Editable {
			return s.Name, true
		}
	}
	return "", false
}

// IsLastEditableField reports whether no editable column follows f.
func IsLastEditableField(k Kind, f Field) bool {
	specs := familySpecs(k.Family())
	for i := len(specs) - 1; i >= 0; i-- {
		if specs[i].Editable {
			return specs[i].Name == f
		}
	}
	return false
}

// NextEditableField returns the editable column after f in the same row.
func NextEditableField(k Kind, f Field) (Field, bool) {
	specs := familySpecs(k.Family())
	found := false
	for _, s := range specs {
		if found && s.Editable {
			return s.Name, true
		}
		if s.Name == f {
			found = true
		}
	}
	return "", false
}
