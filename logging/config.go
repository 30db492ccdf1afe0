package logging

import (
	"strings"

	"github.com/creasty/defaults"
	"go.uber.org/zap/zapcore"
)

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"info"`

	// Format is the log format (json or console).
	Format string `mapstructure:"format" json:"format" yaml:"format" default:"console"`

	// Director is the directory where log files are stored. Empty
	// disables file output.
	Director string `mapstructure:"director" json:"director" yaml:"director"`

	// LogInTerminal enables logging to stdout in addition to any file.
	LogInTerminal bool `mapstructure:"log-in-terminal" json:"logInTerminal" yaml:"log-in-terminal" default:"true"`

	// MaxSize is the maximum size in megabytes of a log file before rotation.
	MaxSize int `mapstructure:"max-size" json:"maxSize" yaml:"max-size" default:"64"`

	// MaxBackups is the maximum number of rotated log files to retain.
	MaxBackups int `mapstructure:"max-backups" json:"maxBackups" yaml:"max-backups" default:"7"`

	// MaxAge is the maximum number of days to retain rotated log files.
	MaxAge int `mapstructure:"max-age" json:"maxAge" yaml:"max-age" default:"30"`

	// Compress gzips rotated log files.
	Compress bool `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

func (c *Config) applyDefaults() {
	_ = defaults.Set(c)
}

// zapLevel maps the configured level name to a zapcore.Level.
func (c Config) zapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
