package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/webterm/internal/util"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Verbosity levels as passed on the command line or in config files.
// 1 is the quietest and values outside the range are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultUser     = "N"
	DefaultHost     = "castle"
	DefaultHomeDir  = "/home/natural"
	DefaultOwnerUID = 0
	DefaultAddr     = ":8080"
	DefaultFsName   = "webterm"
	DefaultName     = "webterm"
	DefaultLogLvl   = util.InfoLevel
)

// DefaultSeed lists the entries every new tree starts with.
// A trailing "/" marks a directory.
var DefaultSeed = []string{
	"~/.bashrc",
	"~/Desktop/",
	"~/Idk/",
	"~/Idk/wow.bat",
	"~/Idk/fol/",
	"~/Idk/fol/test.txt",
}

// Config contains runtime configuration values for a terminal session and its hosts.
type Config struct {
	MountOptions
	LogLvl   util.LogLevel
	User     string   // User label shown in the prompt (Default "N")
	Host     string   // Host label shown in the prompt (Default "castle")
	HomeDir  string   // Absolute home directory rendered as "~" (Default /home/natural)
	OwnerUID uint32   // Owner id stamped on new nodes (Default 0)
	Seed     []string // Paths created in every new tree (Default [DefaultSeed])
	Addr     string   // Listen address for the HTTP host (Default :8080)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl   *int      `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	User     *string   `yaml:"user,omitempty" json:"user,omitempty"`
	Host     *string   `yaml:"host,omitempty" json:"host,omitempty"`
	HomeDir  *string   `yaml:"home_dir,omitempty" json:"home_dir,omitempty"`
	OwnerUID *uint32   `yaml:"owner_uid,omitempty" json:"owner_uid,omitempty"`
	Seed     *[]string `yaml:"seed,omitempty" json:"seed,omitempty"`
	Addr     *string   `yaml:"addr,omitempty" json:"addr,omitempty"`
	FsName   *string   `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name     *string   `yaml:"name,omitempty" json:"name,omitempty"`
	Debug    *bool     `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:   DefaultLogLvl,
		User:     DefaultUser,
		Host:     DefaultHost,
		HomeDir:  DefaultHomeDir,
		OwnerUID: DefaultOwnerUID,
		Seed:     append([]string(nil), DefaultSeed...),
		Addr:     DefaultAddr,
	}
}

// NewConfig returns the defaults with override applied on top. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	cfg.Merge(override)
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override == nil {
		return
	}
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.User != nil {
		c.User = *override.User
	}
	if override.Host != nil {
		c.Host = *override.Host
	}
	if override.HomeDir != nil {
		c.HomeDir = *override.HomeDir
	}
	if override.OwnerUID != nil {
		c.OwnerUID = *override.OwnerUID
	}
	if override.Seed != nil {
		c.Seed = append([]string(nil), (*override.Seed)...)
	}
	if override.Addr != nil {
		c.Addr = *override.Addr
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
}

// Validate reports configuration values the tree cannot work with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.HomeDir, "/") || path.Clean(c.HomeDir) != c.HomeDir || c.HomeDir == "/" {
		return fmt.Errorf("home_dir must be a clean absolute path below /: %q", c.HomeDir)
	}
	if c.User == "" || c.Host == "" {
		return fmt.Errorf("user and host labels must not be empty")
	}
	return nil
}

// VerboseToLogLevel maps a 1 (error) to 5 (trace) verbosity to a [util.LogLevel].
func VerboseToLogLevel(verbose int) util.LogLevel {
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[util.Clamp(verbose, ErrorVerbose, TraceVerbose)-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

// envOverride is read by cleanenv; zero values mean unset.
type envOverride struct {
	User    string `env:"WEBTERM_USER"`
	Host    string `env:"WEBTERM_HOST"`
	HomeDir string `env:"WEBTERM_HOME"`
	Verbose int    `env:"WEBTERM_VERBOSE"`
	Addr    string `env:"WEBTERM_ADDR"`
}

// LoadEnvOverride reads WEBTERM_* environment variables into a ConfigOverride.
// Variables that are unset or empty leave the corresponding field nil.
func LoadEnvOverride() (*ConfigOverride, error) {
	var env envOverride
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	override := &ConfigOverride{}
	if env.User != "" {
		override.User = util.Pointer(env.User)
	}
	if env.Host != "" {
		override.Host = util.Pointer(env.Host)
	}
	if env.HomeDir != "" {
		override.HomeDir = util.Pointer(env.HomeDir)
	}
	if env.Verbose != 0 {
		override.LogLvl = util.Pointer(env.Verbose)
	}
	if env.Addr != "" {
		override.Addr = util.Pointer(env.Addr)
	}
	return override, nil
}
