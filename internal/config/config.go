package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tempocal/internal/recur"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// FocusConfig holds the focus-analysis policy. Peak bounds are "HH:MM".
type FocusConfig struct {
	MinDurationMinutes int    `yaml:"min_duration_minutes" json:"min_duration_minutes"`
	PeakStart          string `yaml:"peak_start" json:"peak_start"`
	PeakEnd            string `yaml:"peak_end" json:"peak_end"`
}

// StateConfig holds the timeline-state recommendation thresholds.
type StateConfig struct {
	ApproachingWarn int `yaml:"approaching_warn" json:"approaching_warn"`
	ActiveWarn      int `yaml:"active_warn" json:"active_warn"`
}

// AuditConfig holds snapshot-store settings.
type AuditConfig struct {
	Path          string `yaml:"path" json:"path"`
	RetentionDays int    `yaml:"retention_days" json:"retention_days"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when anchoring free-text schedules
	// (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultStart is the "HH:MM" start applied when free text carries no
	// recognizable time of day.
	DefaultStart string `yaml:"default_start" json:"default_start"`

	// OccurrenceCap bounds how many occurrences one recurring series may
	// materialize.
	OccurrenceCap int `yaml:"occurrence_cap" json:"occurrence_cap"`

	// PruneCron is a cron-style schedule (e.g. "0 3 * * *") for the audit
	// retention sweep.
	PruneCron string `yaml:"prune_cron" json:"prune_cron"`

	Focus FocusConfig `yaml:"focus" json:"focus"`
	State StateConfig `yaml:"state" json:"state"`
	Audit AuditConfig `yaml:"audit" json:"audit"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Timezone:      "UTC",
		DefaultStart:  "09:00",
		OccurrenceCap: 30,
		PruneCron:     "0 3 * * *",
		Focus: FocusConfig{
			MinDurationMinutes: 60,
			PeakStart:          "09:00",
			PeakEnd:            "12:00",
		},
		State: StateConfig{
			ApproachingWarn: 3,
			ActiveWarn:      20,
		},
		Audit: AuditConfig{
			Path:          "/var/lib/tempocal/audit.db",
			RetentionDays: 90,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if _, err := recur.ParseClock(c.DefaultStart); err != nil {
		c.DefaultStart = def.DefaultStart
	}
	if c.OccurrenceCap <= 0 {
		c.OccurrenceCap = def.OccurrenceCap
	}
	if c.PruneCron == "" {
		c.PruneCron = def.PruneCron
	}
	if c.Focus.MinDurationMinutes <= 0 {
		c.Focus.MinDurationMinutes = def.Focus.MinDurationMinutes
	}
	if c.Focus.PeakStart == "" {
		c.Focus.PeakStart = def.Focus.PeakStart
	}
	if c.Focus.PeakEnd == "" {
		c.Focus.PeakEnd = def.Focus.PeakEnd
	}
	if c.State.ApproachingWarn <= 0 {
		c.State.ApproachingWarn = def.State.ApproachingWarn
	}
	if c.State.ActiveWarn <= 0 {
		c.State.ActiveWarn = def.State.ActiveWarn
	}
	if c.Audit.Path == "" {
		c.Audit.Path = def.Audit.Path
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = def.Audit.RetentionDays
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".tempocal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
