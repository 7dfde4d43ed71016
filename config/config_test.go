package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/webterm/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

// TestNewConfig_WithAllOverride tests that NewConfig properly applies every override.
func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	override.LogLvl = util.Pointer(TraceVerbose)
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			FsName: "test_fs",
			Name:   "test_name",
			Debug:  true,
		},
		LogLvl:   util.TraceLevel,
		User:     *override.User,
		Host:     *override.Host,
		HomeDir:  *override.HomeDir,
		OwnerUID: *override.OwnerUID,
		Seed:     *override.Seed,
		Addr:     *override.Addr,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		User: util.Pointer("root"),
		Seed: util.Pointer([]string{"~/notes.txt"}),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.User = "root"
	expCfg.Seed = []string{"~/notes.txt"}

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_DefaultSeedNotShared(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Seed[0] = "~/changed"

	assert.Equal(t, "~/.bashrc", DefaultSeed[0], "mutating a config must not leak into the defaults")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"relative home", func(c *Config) { c.HomeDir = "home/natural" }, true},
		{"root home", func(c *Config) { c.HomeDir = "/" }, true},
		{"unclean home", func(c *Config) { c.HomeDir = "/home/natural/" }, true},
		{"empty user", func(c *Config) { c.User = "" }, true},
		{"empty host", func(c *Config) { c.Host = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		t.Run("valid"+c.ext, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()
			path := filepath.Join(t.TempDir(), "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("user: N"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestLoadConfigOverrideFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

func TestNewConfigFromFile(t *testing.T) {
	t.Parallel()

	t.Run("merges onto defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("host: tower\nverbose: 4\n"), 0o600))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "tower", cfg.Host)
		assert.Equal(t, util.DebugLevel, cfg.LogLvl)
		assert.Equal(t, DefaultUser, cfg.User)
	})

	t.Run("file error", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})
}

// Not parallel: t.Setenv mutates process state.
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WEBTERM_USER", "alice")
	t.Setenv("WEBTERM_VERBOSE", "5")
	t.Setenv("WEBTERM_HOST", "")

	override, err := LoadEnvOverride()
	require.NoError(t, err)

	require.NotNil(t, override.User)
	assert.Equal(t, "alice", *override.User)
	require.NotNil(t, override.LogLvl)
	assert.Equal(t, 5, *override.LogLvl)
	assert.Nil(t, override.Host, "empty variables must stay unset")
	assert.Nil(t, override.Addr)
}

func createDefaultCfg() *Config {
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

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	return &ConfigOverride{
		LogLvl:   util.Pointer(DebugVerbose),
		User:     util.Pointer("test_user"),
		Host:     util.Pointer("test_host"),
		HomeDir:  util.Pointer("/home/test"),
		OwnerUID: util.Pointer(uint32(1000)),
		Seed:     util.Pointer([]string{"~/a/", "~/a/b.txt"}),
		Addr:     util.Pointer("127.0.0.1:9090"),
		FsName:   util.Pointer("test_fs"),
		Name:     util.Pointer("test_name"),
		Debug:    util.Pointer(true),
	}
}
