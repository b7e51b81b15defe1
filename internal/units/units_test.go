package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMMToInches(t *testing.T) {
	got, ok := MMToInches(25.4)
	assert.True(t, ok)
	assert.Equal(t, 1.00, got)

	got, ok = MMToInches(1000)
	assert.True(t, ok)
	assert.Equal(t, 39.37, got)
}

func TestMMToInchesInvalid(t *testing.T) {
	for _, v := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		if _, ok := MMToInches(v); ok {
			t.Errorf("MMToInches(%v) should be no value", v)
		}
	}
}

func TestRoundUpForROBoundaries(t *testing.T) {
	for _, n := range []float64{0, 1, 31, 88, 120} {
		cases := []struct {
			in   float64
			want float64
		}{
			{n + 0.10, n},
			{n + 0.11, n + 0.5},
			{n + 0.60, n + 0.5},
			{n + 0.61, n + 1},
		}
		for _, c := range cases {
			if c.in <= 0 {
				continue
			}
			got, ok := RoundUpForRO(c.in)
			if !ok {
				t.Fatalf("RoundUpForRO(%v) returned no value", c.in)
			}
			if got != c.want {
				t.Errorf("RoundUpForRO(%v) = %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestRoundUpForROExamples(t *testing.T) {
	cases := map[float64]float64{
		31.10: 31,
		31.11: 31.5,
		31.61: 32,
		32.00: 32,
		31.05: 31,
		35.51: 35.5,
		88.31: 88.5,
		31.996: 32, // fraction rounds to 1.00
	}
	for in, want := range cases {
		got, ok := RoundUpForRO(in)
		assert.True(t, ok, "input %v", in)
		assert.Equal(t, want, got, "input %v", in)
	}
}

func TestRoundUpForROInvalid(t *testing.T) {
	for _, v := range []float64{0, -1.5, math.NaN(), math.Inf(-1)} {
		if _, ok := RoundUpForRO(v); ok {
			t.Errorf("RoundUpForRO(%v) should be no value", v)
		}
	}
}

func TestSquareFeet(t *testing.T) {
	// 36in x 80in opening expressed in mm
	got, ok := SquareFeet(914.4, 2032)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, got, 0.00005)

	// 12in x 12in is one square foot
	got, ok = SquareFeet(304.8, 304.8)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got)

	got, ok = SquareFeet(950, 2100)
	assert.True(t, ok)
	assert.Equal(t, 21.474, got)
}

func TestSquareFeetInvalid(t *testing.T) {
	if _, ok := SquareFeet(0, 2000); ok {
		t.Error("zero width should be no value")
	}
	if _, ok := SquareFeet(900, -1); ok {
		t.Error("negative height should be no value")
	}
}

func TestComposeKey(t *testing.T) {
	key, ok := ComposeKey("A", "101", "MD")
	assert.True(t, ok)
	assert.Equal(t, "A_101_MD", key)

	_, ok = ComposeKey("A", "", "MD")
	assert.False(t, ok)

	_, ok = ComposeKey()
	assert.False(t, ok)
}

func TestTextHelpers(t *testing.T) {
	s, ok := SubtractText("1000", "50")
	assert.True(t, ok)
	assert.Equal(t, "950", s)

	s, ok = SubtractText("1000.5", "50")
	assert.True(t, ok)
	assert.Equal(t, "950.5", s)

	_, ok = SubtractText("abc", "50")
	assert.False(t, ok)

	s, ok = InchesText("25.4")
	assert.True(t, ok)
	assert.Equal(t, "1.00", s)

	s, ok = InchesText("950")
	assert.True(t, ok)
	assert.Equal(t, "37.40", s)

	s, ok = ROText("37.40")
	assert.True(t, ok)
	assert.Equal(t, "37.5", s)

	s, ok = ROText("31.10")
	assert.True(t, ok)
	assert.Equal(t, "31", s)

	s, ok = SquareFeetText("914.4", "2032")
	assert.True(t, ok)
	assert.Equal(t, "20.0000", s)

	_, ok = SquareFeetText("914.4", "")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	d, ok := ParseNumber(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, "12.5", d.String())

	_, ok = ParseNumber("")
	assert.False(t, ok)
	_, ok = ParseNumber("12mm")
	assert.False(t, ok)

	d, ok = ParseNumber("9.5e2")
	assert.True(t, ok)
	assert.Equal(t, "950", d.String())
}

func TestParseNumberOutOfRange(t *testing.T) {
	for _, s := range []string{"1e400", "1e2000000", "-1e16", "1e-30", "1e-2000000"} {
		if _, ok := ParseNumber(s); ok {
			t.Errorf("ParseNumber(%q) accepted", s)
		}
	}
	for _, s := range []string{"999999999999999", "0.00000000000000000001", "0"} {
		if _, ok := ParseNumber(s); !ok {
			t.Errorf("ParseNumber(%q) rejected", s)
		}
	}

	_, ok := SubtractText("1e2000000", "50")
	assert.False(t, ok)
	_, ok = InchesText("1e400")
	assert.False(t, ok)
	_, ok = SquareFeetText("1e400", "2280")
	assert.False(t, ok)
}
