// Package config provides configuration management for the redeemer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config directory
	AppName = "icredeemer"

	// FileName is the configuration file inside the config directory
	FileName = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. ICREDEEMER_SLOW=true
	EnvPrefix = "ICREDEEMER"
)

// Strategy selects where codes come from by default
type Strategy string

const (
	StrategyLocal  Strategy = "local"
	StrategyRemote Strategy = "remote"
)

// Progress display modes
const (
	ProgressBar  = "bar"
	ProgressLog  = "log"
	ProgressNone = "none"
)

// Coordinates is a screen position captured during setup
type Coordinates struct {
	X int `mapstructure:"x" yaml:"x"`
	Y int `mapstructure:"y" yaml:"y"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(X:%d, Y:%d)", c.X, c.Y)
}

// Instructions maps the UI actions to screen positions
type Instructions struct {
	// UnlockChest is the "Unlock a Locked Chest" button
	UnlockChest Coordinates `mapstructure:"unlock_chest" yaml:"unlock_chest"`

	// CharacterSwitch is the "12 Characters" toggle of the unlock dialog
	CharacterSwitch Coordinates `mapstructure:"character_switch" yaml:"character_switch"`
}

func (i Instructions) String() string {
	return fmt.Sprintf("unlock_chest = %s, character_switch = %s", i.UnlockChest, i.CharacterSwitch)
}

// Remote describes the code list endpoint
type Remote struct {
	URL        string `mapstructure:"url" yaml:"url"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
	TimeoutMS  int    `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// InputConfig selects the input backend
type InputConfig struct {
	// Backend is "auto", "native" or "robotgo"
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// CacheConfig controls the redemption cache
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Config represents the application configuration
type Config struct {
	DefaultStrategy Strategy     `mapstructure:"default_strategy" yaml:"default_strategy"`
	Instructions    Instructions `mapstructure:"instructions" yaml:"instructions"`
	Remote          *Remote      `mapstructure:"remote" yaml:"remote,omitempty"`

	// Slow adds half a second to every dwell
	Slow bool `mapstructure:"slow" yaml:"slow"`

	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Progress is "bar", "log" or "none"
	Progress string      `mapstructure:"progress" yaml:"progress"`
	Cache    CacheConfig `mapstructure:"cache" yaml:"cache"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DefaultStrategy: StrategyLocal,
		Input:           InputConfig{Backend: "auto"},
		Progress:        ProgressBar,
		Cache:           CacheConfig{Enabled: true},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("default_strategy", string(d.DefaultStrategy))
	v.SetDefault("instructions.unlock_chest.x", 0)
	v.SetDefault("instructions.unlock_chest.y", 0)
	v.SetDefault("instructions.character_switch.x", 0)
	v.SetDefault("instructions.character_switch.y", 0)
	v.SetDefault("slow", d.Slow)
	v.SetDefault("input.backend", d.Input.Backend)
	v.SetDefault("progress", d.Progress)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
}

// Validate checks the enumerated fields
func (c *Config) Validate() error {
	switch c.DefaultStrategy {
	case StrategyLocal, StrategyRemote:
	default:
		return fmt.Errorf("%w: default_strategy must be local or remote, got %q", ErrInvalid, c.DefaultStrategy)
	}

	switch c.Input.Backend {
	case "auto", "native", "robotgo":
	default:
		return fmt.Errorf("%w: input.backend must be auto, native or robotgo, got %q", ErrInvalid, c.Input.Backend)
	}

	switch c.Progress {
	case ProgressBar, ProgressLog, ProgressNone:
	default:
		return fmt.Errorf("%w: progress must be bar, log or none, got %q", ErrInvalid, c.Progress)
	}

	if c.Remote != nil && c.Remote.URL == "" {
		return fmt.Errorf("%w: remote.url is required when remote is set", ErrInvalid)
	}

	return nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu     sync.Mutex
	dir    string
	config *Config
	log    *zap.Logger
}

// NewManager creates a configuration manager rooted at dir. An empty dir
// uses DefaultDir.
func NewManager(dir string, log *zap.Logger) (*Manager, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		dir:    dir,
		config: DefaultConfig(),
		log:    log,
	}, nil
}

// DefaultDir returns the per-user configuration directory
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, AppName), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		return filepath.Join(home, ".config", AppName), nil
	}
}

// Dir returns the configuration directory
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return filepath.Join(m.dir, FileName)
}

func (m *Manager) backupPath() string {
	return m.Path() + ".bak"
}

// IsSetup reports whether a configuration file exists
func (m *Manager) IsSetup() bool {
	_, err := os.Stat(m.Path())
	return err == nil
}

// Load reads the configuration from disk and applies environment overrides
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.Path()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.config = cfg
	m.log.Debug("Config loaded", zap.String("path", path))
	return nil
}

// Save writes the configuration to disk. The previous file is kept as a
// .bak next to it.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.backup(); err != nil {
		m.log.Warn("Failed to backup config file", zap.Error(err))
	}

	m.log.Debug("Saving configuration", zap.String("path", m.Path()), zap.Int("bytes", len(data)))
	if err := os.WriteFile(m.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (m *Manager) backup() error {
	path := m.Path()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	bak := m.backupPath()
	if err := os.Remove(bak); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(path, bak)
}

// Remove deletes the configuration file. A missing file is not an error.
func (m *Manager) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}
	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set updates the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}
