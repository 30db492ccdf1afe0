package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/leeforge/console/logging"
	"github.com/leeforge/console/plugin"
	"github.com/spf13/viper"
)

// PluginSettings configures one plugin entry in the host config file.
type PluginSettings struct {
	// Enabled marks the plugin for activation at host startup.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// Optional plugins may fail activation without aborting startup.
	Optional bool `mapstructure:"optional" json:"optional" yaml:"optional"`

	// Settings is the free-form configuration passed to the plugin's
	// server factory via plugin.ConfigProvider.
	Settings map[string]any `mapstructure:"settings" json:"settings" yaml:"settings"`
}

// HostConfig is the typed shape of the console configuration file.
type HostConfig struct {
	// Listen is the HTTP control surface bind address.
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" default:":8640"`

	Logging logging.Config            `mapstructure:"logging" json:"logging" yaml:"logging"`
	Plugins map[string]PluginSettings `mapstructure:"plugins" json:"plugins" yaml:"plugins"`
}

// Options controls where the config file is read from.
type Options struct {
	Path      string // config file path, e.g. "config/console.yaml"
	EnvPrefix string // prefix for environment overrides, e.g. "CONSOLE"
	Watch     bool   // re-read the file on change
	OnChange  func(HostConfig)
}

// Config loads and owns the host configuration.
type Config struct {
	instance  *viper.Viper
	opts      Options
	mu        sync.RWMutex
	current   HostConfig
	watchOnce sync.Once
}

// Load reads the config file at opts.Path, applies defaults and
// environment overrides, and returns the bound configuration.
func Load(opts Options) (*Config, error) {
	if opts.Path == "" {
		opts.Path = "config/console.yaml"
	}

	v := viper.New()
	v.SetConfigFile(opts.Path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", opts.Path, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()

	c := &Config{instance: v, opts: opts}
	if err := c.rebind(); err != nil {
		return nil, err
	}

	if opts.Watch {
		c.watchOnce.Do(func() {
			v.OnConfigChange(func(fsnotify.Event) {
				if err := c.rebind(); err != nil {
					return
				}
				if c.opts.OnChange != nil {
					c.opts.OnChange(c.Host())
				}
			})
			v.WatchConfig()
		})
	}
	return c, nil
}

func (c *Config) rebind() error {
	var host HostConfig
	if err := defaults.Set(&host); err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}
	if err := c.instance.Unmarshal(&host); err != nil {
		return fmt.Errorf("unmarshaling config %s: %w", c.opts.Path, err)
	}
	if err := defaults.Set(&host); err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}

	c.mu.Lock()
	c.current = host
	c.mu.Unlock()
	return nil
}

// Host returns the currently bound configuration.
func (c *Config) Host() HostConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// EnabledPlugins returns the names of all plugins marked enabled, sorted
// for deterministic activation order.
func (c *Config) EnabledPlugins() []string {
	host := c.Host()
	names := make([]string, 0, len(host.Plugins))
	for name, settings := range host.Plugins {
		if settings.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PluginConfig returns the scoped ConfigProvider for the named plugin.
// Plugins absent from the file get an empty, disabled provider.
func (c *Config) PluginConfig(name string) plugin.ConfigProvider {
	host := c.Host()
	settings, ok := host.Plugins[name]
	if !ok {
		return plugin.EmptyConfig()
	}
	return plugin.NewConfigEntry(name, settings.Enabled, settings.Settings)
}
