package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

const (
	// ProjectConfigName is the per-directory configuration file.
	ProjectConfigName = ".daqgen.yaml"

	projectConfigAltName = ".daqgen.yml"
)

// Config represents the complete daqgen configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	Templates TemplatesConfig `yaml:"templates" json:"templates"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	DAQ       DAQConfig       `yaml:"daq" json:"daq"`
}

// TemplatesConfig configures where base templates are found.
type TemplatesConfig struct {
	// SearchPath lists directories searched, in order, before FHICL_FILE_PATH
	// and the embedded defaults.
	SearchPath []string `yaml:"search_path" json:"search_path"`

	// CacheSize is the number of loaded templates kept in memory.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// OutputConfig configures names and locations of the files the DAQ writes.
type OutputConfig struct {
	DataDir            string `yaml:"data_dir" json:"data_dir"`
	EventBuilderPrefix string `yaml:"eventbuilder_prefix" json:"eventbuilder_prefix"`
	AggregatorPrefix   string `yaml:"aggregator_prefix" json:"aggregator_prefix"`
}

// DAQConfig holds the sizing defaults used when a command or plan leaves a
// value out.
type DAQConfig struct {
	FragmentSizeWords   int `yaml:"fragment_size_words" json:"fragment_size_words"`
	FragmentsPerBoard   int `yaml:"fragments_per_board" json:"fragments_per_board"`
	BufferMultiplier    int `yaml:"buffer_multiplier" json:"buffer_multiplier"`
	BunchSize           int `yaml:"bunch_size" json:"bunch_size"`
	FileSizeThresholdMB int `yaml:"file_size_threshold_mb" json:"file_size_threshold_mb"`
	FileDurationSecs    int `yaml:"file_duration_secs" json:"file_duration_secs"`
	FileEventCount      int `yaml:"file_event_count" json:"file_event_count"`
	OnmonEventPrescale  int `yaml:"onmon_event_prescale" json:"onmon_event_prescale"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version:  1,
		LogLevel: "warn",
		Templates: TemplatesConfig{
			CacheSize: 64,
		},
		Output: OutputConfig{
			DataDir:            os.TempDir(),
			EventBuilderPrefix: "lbne",
			AggregatorPrefix:   "dune",
		},
		DAQ: DAQConfig{
			FragmentSizeWords:  2097152,
			FragmentsPerBoard:  1,
			BufferMultiplier:   4,
			BunchSize:          1,
			OnmonEventPrescale: 1,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/daqgen/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/daqgen/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "daqgen", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "daqgen", "config.yaml")
	}
	return filepath.Join(home, ".config", "daqgen", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file. Returns nil config and
// nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}

	cfg := &Config{}
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load loads configuration for dir. Precedence, lowest first:
//  1. Defaults
//  2. User config (~/.config/daqgen/config.yaml)
//  3. Project config (.daqgen.yaml in dir or the nearest parent holding one)
//  4. Environment variables (DAQGEN_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, daqerrors.ConfigError("failed to load user config", err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	root, err := FindProjectRoot(dir)
	if err != nil {
		return nil, daqerrors.ConfigError("failed to locate project config", err)
	}
	if err := cfg.loadFromFile(root); err != nil {
		return nil, daqerrors.ConfigError("failed to load project config", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, daqerrors.ConfigError("invalid configuration", err).
			WithSuggestion("run 'daqgen config show' to inspect the merged configuration")
	}
	return cfg, nil
}

// loadFromFile loads .daqgen.yaml (or .daqgen.yml) from dir if present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectConfigName, projectConfigAltName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML loads path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Search paths from
// other are placed ahead of the existing ones.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	if len(other.Templates.SearchPath) > 0 {
		c.Templates.SearchPath = appendUnique(other.Templates.SearchPath, c.Templates.SearchPath)
	}
	if other.Templates.CacheSize != 0 {
		c.Templates.CacheSize = other.Templates.CacheSize
	}

	if other.Output.DataDir != "" {
		c.Output.DataDir = other.Output.DataDir
	}
	if other.Output.EventBuilderPrefix != "" {
		c.Output.EventBuilderPrefix = other.Output.EventBuilderPrefix
	}
	if other.Output.AggregatorPrefix != "" {
		c.Output.AggregatorPrefix = other.Output.AggregatorPrefix
	}

	mergeInt(&c.DAQ.FragmentSizeWords, other.DAQ.FragmentSizeWords)
	mergeInt(&c.DAQ.FragmentsPerBoard, other.DAQ.FragmentsPerBoard)
	mergeInt(&c.DAQ.BufferMultiplier, other.DAQ.BufferMultiplier)
	mergeInt(&c.DAQ.BunchSize, other.DAQ.BunchSize)
	mergeInt(&c.DAQ.FileSizeThresholdMB, other.DAQ.FileSizeThresholdMB)
	mergeInt(&c.DAQ.FileDurationSecs, other.DAQ.FileDurationSecs)
	mergeInt(&c.DAQ.FileEventCount, other.DAQ.FileEventCount)
	mergeInt(&c.DAQ.OnmonEventPrescale, other.DAQ.OnmonEventPrescale)
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func appendUnique(first, rest []string) []string {
	seen := make(map[string]bool, len(first)+len(rest))
	out := make([]string, 0, len(first)+len(rest))
	for _, list := range [][]string{first, rest} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// applyEnvOverrides applies DAQGEN_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DAQGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DAQGEN_DATA_DIR"); v != "" {
		c.Output.DataDir = v
	}
	if v := os.Getenv("DAQGEN_TEMPLATE_PATH"); v != "" {
		c.Templates.SearchPath = appendUnique(filepath.SplitList(v), c.Templates.SearchPath)
	}
	if v := os.Getenv("DAQGEN_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Templates.CacheSize = n
		}
	}
	if v := os.Getenv("DAQGEN_FRAGMENT_SIZE_WORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DAQ.FragmentSizeWords = n
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	if c.Templates.CacheSize < 1 {
		return fmt.Errorf("templates.cache_size must be at least 1, got %d", c.Templates.CacheSize)
	}
	if c.DAQ.BufferMultiplier < 1 {
		return fmt.Errorf("daq.buffer_multiplier must be at least 1, got %d", c.DAQ.BufferMultiplier)
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{"daq.fragment_size_words", c.DAQ.FragmentSizeWords},
		{"daq.fragments_per_board", c.DAQ.FragmentsPerBoard},
		{"daq.bunch_size", c.DAQ.BunchSize},
		{"daq.file_size_threshold_mb", c.DAQ.FileSizeThresholdMB},
		{"daq.file_duration_secs", c.DAQ.FileDurationSecs},
		{"daq.file_event_count", c.DAQ.FileEventCount},
		{"daq.onmon_event_prescale", c.DAQ.OnmonEventPrescale},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, f.value)
		}
	}

	if strings.ContainsAny(c.Output.EventBuilderPrefix+c.Output.AggregatorPrefix, `/\`) {
		return fmt.Errorf("output file prefixes must not contain path separators")
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the first directory holding a
// .daqgen.yaml (or .daqgen.yml). Without one, startDir itself is returned.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if fileExists(filepath.Join(current, ProjectConfigName)) ||
			fileExists(filepath.Join(current, projectConfigAltName)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
