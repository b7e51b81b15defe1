package model

import (
	"sort"
	"strings"
)

// AreaOptions are the built-in area codes offered in the area column.
var AreaOptions = []string{
	"MD", "CB", "MB", "CHB", "CT", "MT", "CHT", "TR", "KG", "DRB",
	"WC-Bath", "Top-Ter", "STR", "Safety-MD", CustomAreaCode,
}

// IsAreaOption reports whether code is one of AreaOptions.
func IsAreaOption(code string) bool {
	for _, o := range AreaOptions {
		if o == code {
			return true
		}
	}
	return false
}

// AreaMinus is the deduction in mm subtracted from a raw width and height.
// Values are kept as entered.
type AreaMinus struct {
	Width  string `json:"width" yaml:"width"`
	Height string `json:"height" yaml:"height"`
}

// AreaMinusConfig maps an area code to its deductions.
type AreaMinusConfig map[string]AreaMinus

// Lookup returns the deductions configured for an area code.
func (c AreaMinusConfig) Lookup(area string) (AreaMinus, bool) {
	area = strings.TrimSpace(area)
	if area == "" || c == nil {
		return AreaMinus{}, false
	}
	m, ok := c[area]
	return m, ok
}

// Clone returns an independent copy.
func (c AreaMinusConfig) Clone() AreaMinusConfig {
	if c == nil {
		return AreaMinusConfig{}
	}
	out := make(AreaMinusConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into c, replacing existing codes.
func (c AreaMinusConfig) Merge(other AreaMinusConfig) {
	for k, v := range other {
		c[k] = v
	}
}

// Codes returns the configured area codes, sorted.
func (c AreaMinusConfig) Codes() []string {
	codes := make([]string, 0, len(c))
	for k := range c {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
