package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/innovadoor/sitemeasure/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
}

// ExportAllData writes the config, including its area presets, to a single
// JSON file. The API token is not exported.
func ExportAllData(exportPath string, config model.AppConfig) error {
	config.APIToken = ""
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller decides how to apply it;
// MergeBackup covers the usual case.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	backup.Config.Normalize()
	return backup, nil
}

// MergeBackup applies an imported backup onto the current config. Area
// presets are merged, imported values winning; the local API token is kept.
func MergeBackup(current model.AppConfig, backup BackupData) model.AppConfig {
	out := backup.Config
	out.APIToken = current.APIToken
	areas := current.AreaMinus.Clone()
	areas.Merge(backup.Config.AreaMinus)
	out.AreaMinus = areas
	out.Normalize()
	return out
}
