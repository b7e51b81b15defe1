package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Backend used by sessions. When APIURL is empty sessions run against the
	// local sqlite database.
	APIURL      string `json:"api_url" yaml:"api_url"`
	APIToken    string `json:"api_token" yaml:"api_token"`
	DBPath      string `json:"db_path" yaml:"db_path"`
	ListenAddr  string `json:"listen_addr" yaml:"listen_addr"`
	HTTPTimeout int    `json:"http_timeout" yaml:"http_timeout"` // seconds

	// Sheet defaults
	DefaultKind    Kind            `json:"default_kind" yaml:"default_kind"`
	AreaMinus      AreaMinusConfig `json:"area_minus" yaml:"area_minus"`
	HistoryDepth   int             `json:"history_depth" yaml:"history_depth"`
	DebounceMillis int             `json:"debounce_ms" yaml:"debounce_ms"`

	// Application preferences
	LogLevel      string   `json:"log_level" yaml:"log_level"` // "debug", "info", "warn", "error"
	RecentExports []string `json:"recent_exports" yaml:"recent_exports"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DBPath:         "sitemeasure.db",
		ListenAddr:     ":8080",
		HTTPTimeout:    30,
		DefaultKind:    KindRegularShutter,
		AreaMinus:      AreaMinusConfig{},
		HistoryDepth:   50,
		DebounceMillis: 300,
		LogLevel:       "info",
		RecentExports:  []string{},
	}
}

// Normalize replaces out-of-range values with their defaults.
func (c *AppConfig) Normalize() {
	d := DefaultAppConfig()
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = d.HistoryDepth
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = d.DebounceMillis
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if !c.DefaultKind.Valid() {
		c.DefaultKind = d.DefaultKind
	}
	if c.AreaMinus == nil {
		c.AreaMinus = AreaMinusConfig{}
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.RecentExports == nil {
		c.RecentExports = []string{}
	}
}

// AddRecentExport records path at the front of the recent list, keeping at
// most max entries.
func (c *AppConfig) AddRecentExport(path string, max int) {
	out := []string{path}
	for _, p := range c.RecentExports {
		if p != path {
			out = append(out, p)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	c.RecentExports = out
}
