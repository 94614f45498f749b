// Package config loads run configuration for laraup.
//
// Configuration comes from three layers, lowest precedence first:
// built-in defaults (which reproduce the documented timings: 30 poll
// attempts at 2s, 5s stabilization pauses, 5 key-generation attempts
// with a 3s delay), an optional laraup.yaml in the working directory,
// and LARAUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for one run.
type Config struct {
	// Runtime pins the container engine ("docker" or "podman").
	// Empty means detect, prompting if both are installed.
	Runtime string `mapstructure:"runtime"`

	// Laravel pins the composer version constraint for create-project.
	// Empty means show the interactive version menu.
	Laravel string `mapstructure:"laravel"`

	// AppDir is the directory the Laravel source tree lives in.
	AppDir string `mapstructure:"app_dir"`

	// StackDir is the directory holding the compose file and the other
	// stack files.
	StackDir string `mapstructure:"stack_dir"`

	// ComposeFile is the compose file name inside StackDir.
	ComposeFile string `mapstructure:"compose_file"`

	// Project is the compose project name, namespacing containers,
	// networks and volumes.
	Project string `mapstructure:"project"`

	// Services names the two containers whose readiness gates the run.
	Services ServicesConfig `mapstructure:"services"`

	// Poll is the readiness polling policy.
	Poll PollConfig `mapstructure:"poll"`

	// Stabilize is the fixed pause after each container is confirmed
	// running, before the next step proceeds.
	Stabilize time.Duration `mapstructure:"stabilize"`

	// Key is the retry policy for in-container key generation.
	Key KeyConfig `mapstructure:"key"`
}

// ServicesConfig names the compose services laraup waits on.
type ServicesConfig struct {
	// App is the application service (FrankenPHP + Laravel).
	App string `mapstructure:"app"`

	// DB is the database service.
	DB string `mapstructure:"db"`
}

// PollConfig bounds a readiness poll: Attempts checks, Interval apart.
type PollConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

// Budget returns the worst-case duration of one poll.
func (p PollConfig) Budget() time.Duration {
	return time.Duration(p.Attempts) * p.Interval
}

// KeyConfig bounds the key-generation retry loop.
type KeyConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

// ConfigFileName is the optional per-project config file (without
// extension), looked up in the working directory.
const ConfigFileName = "laraup"

// Load resolves the configuration for a run rooted at dir.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("LARAUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the normal case; everything else
		// (unreadable file, malformed YAML) is a real error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.yaml: %w", ConfigFileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults installs the built-in defaults, which reproduce the
// documented timing contract of the tool.
func setDefaults(v *viper.Viper) {
	v.SetDefault("runtime", "")
	v.SetDefault("laravel", "")
	v.SetDefault("app_dir", "codesrc")
	v.SetDefault("stack_dir", "stack")
	v.SetDefault("compose_file", "docker-compose.yml")
	v.SetDefault("project", "laraup")
	v.SetDefault("services.app", "app")
	v.SetDefault("services.db", "db")
	v.SetDefault("poll.attempts", 30)
	v.SetDefault("poll.interval", 2*time.Second)
	v.SetDefault("stabilize", 5*time.Second)
	v.SetDefault("key.attempts", 5)
	v.SetDefault("key.delay", 3*time.Second)
}

// validate rejects configurations that would disable the safety bounds.
func (c *Config) validate() error {
	if c.Poll.Attempts < 1 {
		return fmt.Errorf("poll.attempts must be at least 1 (got %d)", c.Poll.Attempts)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive (got %s)", c.Poll.Interval)
	}
	if c.Key.Attempts < 1 {
		return fmt.Errorf("key.attempts must be at least 1 (got %d)", c.Key.Attempts)
	}
	if c.Key.Delay < 0 {
		return fmt.Errorf("key.delay must not be negative (got %s)", c.Key.Delay)
	}
	if c.Stabilize < 0 {
		return fmt.Errorf("stabilize must not be negative (got %s)", c.Stabilize)
	}
	if c.Services.App == "" || c.Services.DB == "" {
		return fmt.Errorf("services.app and services.db must not be empty")
	}
	return nil
}
