package model

// Storage backends for the project store.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultCurrency         string  `json:"default_currency"`
	DefaultLevel            string  `json:"default_level"`
	DefaultLot              string  `json:"default_lot"`
	DefaultIsolationOpacity float64 `json:"default_isolation_opacity"`
	DefaultHitTolerance     float64 `json:"default_hit_tolerance"`

	// Application preferences
	StorageBackend   string   `json:"storage_backend"`    // "json" or "sqlite"
	AutoSaveInterval int      `json:"auto_save_interval"` // minutes, 0 = disabled
	RecentProjects   []string `json:"recent_projects"`
	Theme            string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultCurrency:         defaults.Currency,
		DefaultLevel:            defaults.DefaultLevel,
		DefaultLot:              defaults.DefaultLot,
		DefaultIsolationOpacity: defaults.IsolationOpacity,
		DefaultHitTolerance:     defaults.HitTolerance,
		StorageBackend:          StorageJSON,
		AutoSaveInterval:        0,
		RecentProjects:          []string{},
		Theme:                   "system",
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Currency = c.DefaultCurrency
	s.DefaultLevel = c.DefaultLevel
	s.DefaultLot = c.DefaultLot
	s.IsolationOpacity = c.DefaultIsolationOpacity
	s.HitTolerance = c.DefaultHitTolerance
}

// AddRecentProject moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentProjects = recent
}
