package model

import "fmt"

// Kind is the measurement type selected for a sheet. It decides which fields
// are shown and which derived-field rules apply.
type Kind string

const (
	KindFrameSample    Kind = "frame_sample"
	KindShutterSample  Kind = "shutter_sample"
	KindRegularFrame   Kind = "regular_frame"
	KindRegularShutter Kind = "regular_shutter"
)

// Kinds lists every measurement kind in display order.
var Kinds = []Kind{KindFrameSample, KindShutterSample, KindRegularFrame, KindRegularShutter}

// Family groups kinds that share a field set.
type Family int

const (
	FamilyNone    Family = iota
	FamilyFrame          // frame_sample, regular_frame
	FamilyShutter        // shutter_sample, regular_shutter
)

func (f Family) String() string {
	switch f {
	case FamilyFrame:
		return "Frame"
	case FamilyShutter:
		return "Shutter"
	default:
		return "None"
	}
}

// Family returns the field family of the kind.
func (k Kind) Family() Family {
	switch k {
	case KindFrameSample, KindRegularFrame:
		return FamilyFrame
	case KindShutterSample, KindRegularShutter:
		return FamilyShutter
	default:
		return FamilyNone
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k.Family() != FamilyNone
}

func (k Kind) String() string {
	switch k {
	case KindFrameSample:
		return "Frame Sample"
	case KindShutterSample:
		return "Shutter Sample"
	case KindRegularFrame:
		return "Regular Frame"
	case KindRegularShutter:
		return "Regular Shutter"
	default:
		return string(k)
	}
}

// ParseKind converts a wire name such as "regular_shutter" to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown measurement kind %q", s)
	}
	return k, nil
}
