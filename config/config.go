package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for capture sources and session teardown.
// Fields may be loaded from a JSON or YAML file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Session teardown timing. These are empirical waits for the hardware
	// layer to release native buffers; zero is valid on platforms without
	// such release latency.
	CleanupSettleMS  int `json:"cleanup_settle_ms" yaml:"cleanup_settle_ms"`
	TeardownSettleMS int `json:"teardown_settle_ms" yaml:"teardown_settle_ms"`

	// Grace period between handoff and the post-dismissal slot verification.
	HandoffGraceMS int `json:"handoff_grace_ms" yaml:"handoff_grace_ms"`

	// Acquisition source locations.
	SpoolDir    string `json:"spool_dir" yaml:"spool_dir"`       // scanner feeder spool
	PicturesDir string `json:"pictures_dir" yaml:"pictures_dir"` // photo library root

	// Retention of completed attempts.
	HistorySize int `json:"history_size" yaml:"history_size"`

	// Preview thumbnail bounds.
	PreviewMaxW int `json:"preview_max_w" yaml:"preview_max_w"`
	PreviewMaxH int `json:"preview_max_h" yaml:"preview_max_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		CleanupSettleMS:  150,
		TeardownSettleMS: 250,
		HandoffGraceMS:   300,
		SpoolDir:         filepath.Join(xdg.DataHome, "docscan", "spool"),
		PicturesDir:      xdg.UserDirs.Pictures,
		HistorySize:      32,
		PreviewMaxW:      320,
		PreviewMaxH:      240,
	}
}

// DefaultPath resolves the preferred config file location for this user.
func DefaultPath() string {
	p, err := xdg.ConfigFile(filepath.Join("docscan", "config.json"))
	if err != nil {
		return filepath.Join(".", "docscan.json")
	}
	return p
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.CleanupSettleMS < 0 {
		c.CleanupSettleMS = 0
	}
	if c.TeardownSettleMS < 0 {
		c.TeardownSettleMS = 0
	}
	if c.HandoffGraceMS < 0 {
		c.HandoffGraceMS = 0
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 32
	}
	if c.PreviewMaxW < 1 {
		c.PreviewMaxW = 320
	}
	if c.PreviewMaxH < 1 {
		c.PreviewMaxH = 240
	}
	return nil
}

// CleanupSettle returns the configured cleanup settle wait as a duration.
func (c *Config) CleanupSettle() time.Duration {
	return time.Duration(c.CleanupSettleMS) * time.Millisecond
}

// TeardownSettle returns the configured teardown settle wait as a duration.
func (c *Config) TeardownSettle() time.Duration {
	return time.Duration(c.TeardownSettleMS) * time.Millisecond
}

// HandoffGrace returns the configured handoff verification grace as a duration.
func (c *Config) HandoffGrace() time.Duration {
	return time.Duration(c.HandoffGraceMS) * time.Millisecond
}

// Load attempts to read configuration from the given file path. The format is
// selected by extension (.yaml/.yml use YAML, anything else JSON). If the file
// does not exist it returns DefaultConfig(). On decode error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return cfg, fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, cfg); err != nil {
			return cfg, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, format selected by extension.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	var (
		raw []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(c)
	default:
		raw, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
