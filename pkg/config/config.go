// Package config holds the process-wide wait defaults every Should call
// reads when no explicit timeout is given, plus the viper-backed file/env
// configuration used by the CLI and the chromedp driver.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// DefaultTimeout bounds a Should/ShouldNot wait when the call site does
	// not pass its own.
	DefaultTimeout = 4 * time.Second
	// DefaultPollInterval is the fixed tick of the wait engine.
	DefaultPollInterval = 100 * time.Millisecond
)

var (
	timeoutNanos      atomic.Int64
	pollIntervalNanos atomic.Int64
)

// Timeout returns the current process-wide default wait timeout.
func Timeout() time.Duration {
	if n := timeoutNanos.Load(); n > 0 {
		return time.Duration(n)
	}
	return DefaultTimeout
}

// SetTimeout overrides the process-wide default wait timeout. Zero or
// negative restores the default.
func SetTimeout(d time.Duration) {
	timeoutNanos.Store(int64(d))
}

// PollInterval returns the current wait engine tick.
func PollInterval() time.Duration {
	if n := pollIntervalNanos.Load(); n > 0 {
		return time.Duration(n)
	}
	return DefaultPollInterval
}

// SetPollInterval overrides the wait engine tick. Zero or negative restores
// the default.
func SetPollInterval(d time.Duration) {
	pollIntervalNanos.Store(int64(d))
}

// Config is the full application configuration as loaded from file and
// environment.
type Config struct {
	Wait    WaitConfig    `mapstructure:"wait"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Browser BrowserConfig `mapstructure:"browser"`
}

// WaitConfig configures the wait engine defaults.
type WaitConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LoggerConfig configures the zap logger bootstrap.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`

	// File output with rotation. Empty LogFile disables file logging.
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// BrowserConfig configures the chromedp-backed driver session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	ExecPath          string        `mapstructure:"exec_path"`
	UserAgent         string        `mapstructure:"user_agent"`
	WindowWidth       int           `mapstructure:"window_width"`
	WindowHeight      int           `mapstructure:"window_height"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
}

// Apply installs the loaded wait defaults as the process-wide values.
func (c *Config) Apply() {
	SetTimeout(c.Wait.Timeout)
	SetPollInterval(c.Wait.PollInterval)
}

// Load reads configuration from cfgFile if given, otherwise from
// ./domscope.yaml or ~/.domscope/domscope.yaml, with DOMSCOPE_* environment
// overrides. A missing config file is not an error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("wait.timeout", DefaultTimeout)
	v.SetDefault("wait.poll_interval", DefaultPollInterval)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "domscope")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".domscope"))
		}
		v.SetConfigName("domscope")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DOMSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
