package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type PythonConfig struct {
	Interpreter string            `json:"interpreter" yaml:"interpreter"`
	InstallArgs []string          `json:"install_args,omitempty" yaml:"install_args,omitempty"`
	ImportNames map[string]string `json:"import_names,omitempty" yaml:"import_names,omitempty"`
}

type ProgressConfig struct {
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`
	Hold     string `json:"hold,omitempty" yaml:"hold,omitempty"`
}

type InstallConfig struct {
	Delay   string `json:"delay,omitempty" yaml:"delay,omitempty"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

type Config struct {
	Schema        int            `json:"schema" yaml:"schema"`
	WorkspaceRoot string         `json:"workspace_root,omitempty" yaml:"workspace_root,omitempty"`
	Editor        string         `json:"editor,omitempty" yaml:"editor,omitempty"`
	Python        PythonConfig   `json:"python" yaml:"python"`
	Progress      ProgressConfig `json:"progress" yaml:"progress"`
	Install       InstallConfig  `json:"install" yaml:"install"`
	Log           LogConfig      `json:"log" yaml:"log"`
}

const CurrentConfigSchema = 1

const (
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultProgressHold     = 500 * time.Millisecond
	DefaultInstallDelay     = 500 * time.Millisecond
	DefaultInstallTimeout   = 5 * time.Minute
)

func DefaultConfig() *Config {
	return &Config{
		Schema: CurrentConfigSchema,
		Python: PythonConfig{
			Interpreter: "python3",
			InstallArgs: []string{"-m", "pip", "install"},
			ImportNames: map[string]string{},
		},
		Progress: ProgressConfig{
			Interval: DefaultProgressInterval.String(),
			Hold:     DefaultProgressHold.String(),
		},
		Install: InstallConfig{
			Delay:   DefaultInstallDelay.String(),
			Timeout: DefaultInstallTimeout.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the first config file found on the search path and layers it
// over the defaults. Environment overrides are applied last.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		break
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	cfg.expandPaths()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths,
		filepath.Join(xdgConfig, "ani", "config.json"),
		filepath.Join(xdgConfig, "ani", "config.yaml"),
	)

	return paths
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ANI_PYTHON"); v != "" {
		c.Python.Interpreter = v
	}
	if v := os.Getenv("ANI_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ANI_WORKSPACE_ROOT"); v != "" {
		c.WorkspaceRoot = v
	}
}

// fillDefaults restores defaults for fields a partial config file left empty.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Schema == 0 {
		c.Schema = def.Schema
	}
	if c.Python.Interpreter == "" {
		c.Python.Interpreter = def.Python.Interpreter
	}
	if len(c.Python.InstallArgs) == 0 {
		c.Python.InstallArgs = def.Python.InstallArgs
	}
	if c.Python.ImportNames == nil {
		c.Python.ImportNames = map[string]string{}
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

func (c *Config) expandPaths() {
	c.WorkspaceRoot = expandHome(c.WorkspaceRoot)
}

// expandHome expands a leading "~" or "~/". Other users' homes ("~bob") are
// left alone.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func (c *Config) ProgressInterval() time.Duration {
	return parseDuration(c.Progress.Interval, DefaultProgressInterval)
}

func (c *Config) ProgressHold() time.Duration {
	return parseDuration(c.Progress.Hold, DefaultProgressHold)
}

func (c *Config) InstallDelay() time.Duration {
	return parseDuration(c.Install.Delay, DefaultInstallDelay)
}

func (c *Config) InstallTimeout() time.Duration {
	return parseDuration(c.Install.Timeout, DefaultInstallTimeout)
}

// parseDuration accepts Go duration strings like "500ms" or "5m" and falls
// back to def when the value is empty or malformed. "0" and "0s" are honoured.
func parseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	return def
}
