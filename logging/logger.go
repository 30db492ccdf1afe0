package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a *zap.Logger from the given Config. Output goes to stdout
// and, when Director is set, to a size-rotated file.
func New(config Config) *zap.Logger {
	config.applyDefaults()

	var cores []zapcore.Core
	level := config.zapLevel()

	if config.LogInTerminal || config.Director == "" {
		cores = append(cores, zapcore.NewCore(
			newEncoder(config),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	if config.Director != "" {
		file := &lumberjack.Logger{
			Filename:   filepath.Join(config.Director, "console.log"),
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(
			newEncoder(config),
			zapcore.AddSync(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func newEncoder(config Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	if config.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}
