package model

import "testing"

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.HistoryDepth != 50 {
		t.Errorf("expected HistoryDepth=50, got %d", cfg.HistoryDepth)
	}
	if cfg.DebounceMillis != 300 {
		t.Errorf("expected DebounceMillis=300, got %d", cfg.DebounceMillis)
	}
	if cfg.DefaultKind != KindRegularShutter {
		t.Errorf("expected default kind regular_shutter, got %s", cfg.DefaultKind)
	}
	if cfg.AreaMinus == nil {
		t.Error("AreaMinus should not be nil")
	}
	if cfg.RecentExports == nil {
		t.Error("RecentExports should not be nil")
	}
}

func TestNormalizeRestoresDefaults(t *testing.T) {
	cfg := AppConfig{HistoryDepth: -1, DefaultKind: "door"}
	cfg.Normalize()

	if cfg.HistoryDepth != 50 {
		t.Errorf("expected HistoryDepth=50, got %d", cfg.HistoryDepth)
	}
	if cfg.DebounceMillis != 300 {
		t.Errorf("expected DebounceMillis=300, got %d", cfg.DebounceMillis)
	}
	if cfg.DefaultKind != KindRegularShutter {
		t.Errorf("expected default kind to be restored, got %s", cfg.DefaultKind)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestAddRecentExport(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentExport("a.pdf", 2)
	cfg.AddRecentExport("b.pdf", 2)
	cfg.AddRecentExport("a.pdf", 2)
	cfg.AddRecentExport("c.pdf", 2)

	if len(cfg.RecentExports) != 2 {
		t.Fatalf("expected 2 recent exports, got %d", len(cfg.RecentExports))
	}
	if cfg.RecentExports[0] != "c.pdf" || cfg.RecentExports[1] != "a.pdf" {
		t.Errorf("unexpected order: %v", cfg.RecentExports)
	}
}
