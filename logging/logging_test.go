package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Level != "info" || c.Format != "console" {
		t.Errorf("defaults = %+v, want info/console", c)
	}
	if !c.LogInTerminal {
		t.Error("terminal logging should default on")
	}
	if c.MaxSize == 0 || c.MaxBackups == 0 || c.MaxAge == 0 {
		t.Errorf("rotation defaults not applied: %+v", c)
	}
}

func TestConfig_ZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for name, want := range cases {
		if got := (Config{Level: name}).zapLevel(); got != want {
			t.Errorf("zapLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:         "info",
		Format:        "json",
		Director:      dir,
		LogInTerminal: false,
	})

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "console.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
