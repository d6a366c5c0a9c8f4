package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SANDPACK"

// LocalConfigName is the config file looked up in the working directory.
const LocalConfigName = "sandpack.yaml"

// ServeConfig configures the viewer server.
type ServeConfig struct {
	Addr            string            `mapstructure:"addr"`
	PublicDir       string            `mapstructure:"public_dir"`
	BasePath        string            `mapstructure:"base_path"`
	ManifestBaseURL string            `mapstructure:"manifest_base_url"` // empty: this server
	Title           string            `mapstructure:"title"`
	Titles          map[string]string `mapstructure:"titles"`
	FetchTimeout    time.Duration     `mapstructure:"fetch_timeout"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// HistoryConfig configures the generation run history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	ProjectsDir string        `mapstructure:"projects_dir"`
	OutputName  string        `mapstructure:"output_name"`
	Exclude     []string      `mapstructure:"exclude"`
	Workers     int           `mapstructure:"workers"`
	Output      string        `mapstructure:"output"`
	Serve       ServeConfig   `mapstructure:"serve"`
	Watch       WatchConfig   `mapstructure:"watch"`
	History     HistoryConfig `mapstructure:"history"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("projects_dir", DefaultProjectsDir)
	v.SetDefault("output_name", DefaultOutputName)
	v.SetDefault("exclude", []string{})
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("output", DefaultOutput)

	v.SetDefault("serve.addr", DefaultServeAddr)
	v.SetDefault("serve.public_dir", DefaultPublicDir)
	v.SetDefault("serve.base_path", DefaultBasePath)
	v.SetDefault("serve.manifest_base_url", "")
	v.SetDefault("serve.title", DefaultTitle)
	v.SetDefault("serve.titles", map[string]string{})
	v.SetDefault("serve.fetch_timeout", DefaultFetchTimeout)

	v.SetDefault("watch.debounce", DefaultDebounce)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // Empty means use DefaultHistoryPath
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{})
}

// Configure prepares v to read the config file and environment.
// An explicit file wins; otherwise ./sandpack.yaml and the XDG config
// directory are searched in that order.
func Configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("sandpack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// Read loads the config file into v. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper decodes v into a Config and normalizes it.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// Load loads configuration from the given file (or the default search
// path when empty) and environment variables.
func Load(file string) (*Config, error) {
	v := viper.New()
	Configure(v, file)

	if err := Read(v); err != nil {
		return nil, err
	}

	return FromViper(v)
}

func (c *Config) normalize() {
	if c.OutputName == "" {
		c.OutputName = DefaultOutputName
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.Serve.BasePath == "" {
		c.Serve.BasePath = DefaultBasePath
	}
	c.Serve.BasePath = NormalizeBasePath(c.Serve.BasePath)
	if c.Serve.FetchTimeout <= 0 {
		c.Serve.FetchTimeout = DefaultFetchTimeout
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = DefaultRetentionDays
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath()
	}
	if c.Serve.Titles == nil {
		c.Serve.Titles = map[string]string{}
	}
}

// NormalizeBasePath returns p with exactly one leading and one trailing slash.
func NormalizeBasePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// ConfigDir returns the configuration directory, honoring $XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "sandpack")
	}
	return filepath.Join(xdg.ConfigHome, "sandpack")
}

// ConfigPath returns the path of the user config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns $XDG_DATA_HOME/sandpack/.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "sandpack")
}

// DefaultHistoryPath returns the default history database directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// WriteDefault writes a default config file to path unless one exists.
// It reports whether a file was created.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigFile()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}

func defaultConfigFile() string {
	return fmt.Sprintf(`# Sandpack project manifest configuration

# Folder holding one subdirectory per project
projects_dir: %s

# Manifest written into each project folder
output_name: %s

# Extra glob patterns to leave out of manifests (dot files are always skipped)
exclude: []

# Projects generated concurrently
workers: %d

# Report format: pretty, plain, json, yaml
output: %s

serve:
  addr: %s
  public_dir: %s
  base_path: %s
  # Where the viewer fetches manifests from (empty means this server)
  manifest_base_url: ""
  title: %s
  # Display titles by project id
  titles: {}
  fetch_timeout: %s

watch:
  debounce: %s

history:
  enabled: true
  # Empty means $XDG_DATA_HOME/sandpack/history
  path: ""
  retention_days: %d

logging:
  # debug, info, warn, error
  level: %s
  # Empty disables the log file
  path: ""
  components: {}
`, DefaultProjectsDir, DefaultOutputName, DefaultWorkers, DefaultOutput,
		DefaultServeAddr, DefaultPublicDir, DefaultBasePath, DefaultTitle, DefaultFetchTimeout,
		DefaultDebounce, DefaultRetentionDays, DefaultLogLevel)
}
