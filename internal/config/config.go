package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/arduino/go-paths-helper"
	"github.com/goccy/go-yaml"
)

const (
	envPrefix    = "ARDUINO_APP_UPDATER__"
	DevVersion   = "0.0.0-dev"
	defaultDelay = 5 * time.Second
)

type Configuration struct {
	dataDir      *paths.Path
	configDir    *paths.Path
	feedURL      string
	target       *paths.Path
	startupDelay time.Duration
	disabled     bool
	version      string
}

// fileConfig is the optional <config dir>/config.yaml. Environment variables
// take precedence over its values.
type fileConfig struct {
	FeedURL      string `yaml:"feed_url"`
	Target       string `yaml:"target"`
	StartupDelay string `yaml:"startup_delay"`
}

func NewFromEnv(version string) (Configuration, error) {
	configDir := paths.New(os.Getenv(envPrefix + "CONFIG_DIR"))
	if configDir == nil {
		xdgConfig, err := os.UserConfigDir()
		if err != nil {
			return Configuration{}, err
		}
		configDir = paths.New(xdgConfig).Join("arduino-app-updater")
	}
	configDir, err := absolute(configDir)
	if err != nil {
		return Configuration{}, err
	}

	dataDir := paths.New(os.Getenv(envPrefix + "DATA_DIR"))
	if dataDir == nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return Configuration{}, err
		}
		dataDir = paths.New(home).Join(".local", "share", "arduino-app-updater")
	}
	dataDir, err = absolute(dataDir)
	if err != nil {
		return Configuration{}, err
	}

	fc, err := loadFile(configDir.Join("config.yaml"))
	if err != nil {
		return Configuration{}, err
	}

	c := Configuration{
		dataDir:      dataDir,
		configDir:    configDir,
		feedURL:      firstNonEmpty(os.Getenv(envPrefix+"FEED_URL"), fc.FeedURL),
		target:       paths.New(firstNonEmpty(os.Getenv(envPrefix+"TARGET"), fc.Target)),
		startupDelay: defaultDelay,
		version:      version,
	}

	if delay := firstNonEmpty(os.Getenv(envPrefix+"STARTUP_DELAY"), fc.StartupDelay); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return Configuration{}, fmt.Errorf("invalid startup delay %q: %w", delay, err)
		}
		if d < 0 {
			return Configuration{}, fmt.Errorf("invalid startup delay %q: must not be negative", delay)
		}
		c.startupDelay = d
	}

	if v := os.Getenv(envPrefix + "DISABLE"); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return Configuration{}, fmt.Errorf("invalid %sDISABLE value %q: %w", envPrefix, v, err)
		}
		c.disabled = disabled
	}

	if c.target != nil {
		if c.target, err = absolute(c.target); err != nil {
			return Configuration{}, err
		}
	}

	if err := c.init(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

func (c *Configuration) init() error {
	return c.DataDir().MkdirAll()
}

func loadFile(file *paths.Path) (fileConfig, error) {
	var fc fileConfig
	f, err := file.Open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("cannot open config file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f, yaml.DisallowUnknownField()).Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return fc, nil
		}
		return fc, fmt.Errorf("cannot decode config file %s: %w", file, err)
	}
	return fc, nil
}

func absolute(p *paths.Path) (*paths.Path, error) {
	if p.IsAbs() {
		return p, nil
	}
	wd, err := paths.Getwd()
	if err != nil {
		return nil, err
	}
	return wd.JoinPath(p), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Configuration) DataDir() *paths.Path {
	return c.dataDir
}

func (c *Configuration) ConfigDir() *paths.Path {
	return c.configDir
}

func (c *Configuration) SettingsFile() *paths.Path {
	return c.dataDir.Join("properties.msgpack")
}

func (c *Configuration) FeedURL() string {
	return c.feedURL
}

// Target is the executable to update and relaunch; nil means the running one.
func (c *Configuration) Target() *paths.Path {
	return c.target
}

func (c *Configuration) StartupDelay() time.Duration {
	return c.startupDelay
}

func (c *Configuration) Version() string {
	return c.version
}

// UpdaterAvailable reports whether this build runs in an environment where
// self-update is possible: a release feed is configured, the updater was not
// disabled and the binary is a release build.
func (c *Configuration) UpdaterAvailable() bool {
	return c.feedURL != "" && !c.disabled && c.version != "" && c.version != DevVersion
}
