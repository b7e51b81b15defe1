package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/innovadoor/sitemeasure/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration,
// ~/.sitemeasure on every platform.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sitemeasure")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// marshalFor encodes v as YAML or indented JSON depending on the extension.
func marshalFor(path string, v any) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

func unmarshalFor(path string, data []byte, v any) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveAppConfig persists an AppConfig to path, as YAML for .yaml/.yml files
// and JSON otherwise. Missing parent directories are created.
func SaveAppConfig(path string, config model.AppConfig) error {
	data, err := marshalFor(path, config)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// LoadAppConfig reads an AppConfig from path. A missing file yields
// DefaultAppConfig with no error; fields absent from the file keep their
// defaults.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := unmarshalFor(path, data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	config.Normalize()
	return config, nil
}
