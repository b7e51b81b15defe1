package project

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// ExportAreaPresets writes area deductions to path (JSON or YAML by
// extension) for sharing between sites.
func ExportAreaPresets(path string, areas model.AreaMinusConfig) error {
	if areas == nil {
		areas = model.AreaMinusConfig{}
	}
	data, err := marshalFor(path, areas)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ImportAreaPresets reads area deductions from path. Codes are trimmed and
// every value must be blank or numeric.
func ImportAreaPresets(path string) (model.AreaMinusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw model.AreaMinusConfig
	if err := unmarshalFor(path, data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, errors.New("imported file has no area presets")
	}

	areas := make(model.AreaMinusConfig, len(raw))
	for code, m := range raw {
		code = strings.TrimSpace(code)
		if code == "" || code == model.CustomAreaCode {
			return nil, fmt.Errorf("invalid area code %q", code)
		}
		m.Width = strings.TrimSpace(m.Width)
		m.Height = strings.TrimSpace(m.Height)
		for _, v := range []string{m.Width, m.Height} {
			if v == "" {
				continue
			}
			if _, ok := units.ParseNumber(v); !ok {
				return nil, fmt.Errorf("area %s: minus value %q is not a number", code, v)
			}
		}
		areas[code] = m
	}
	return areas, nil
}
