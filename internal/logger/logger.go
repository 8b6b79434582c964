// Package logger configures the process-wide logrus logger.
//
// Packages log through the logrus standard logger (imported as log), so Init
// only has to run once at startup. Gin's request and error output is routed
// through the same logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level, format and an optional rotated log file.
type Config struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig logs text at info level to stdout only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// Init applies cfg to the standard logger and returns it.
func Init(cfg Config) (*log.Logger, error) {
	logger := log.StandardLogger()
	if err := Configure(logger, cfg); err != nil {
		return nil, err
	}

	writer := &GinLogWriter{logger: logger}
	gin.DefaultWriter = writer
	gin.DefaultErrorWriter = writer

	return logger, nil
}

// Configure applies cfg to an arbitrary logger.
func Configure(logger *log.Logger, cfg Config) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
		logger.Warnf("Invalid log level %q, using info", cfg.Level)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		logger.Warnf("Invalid log format %q, using text", cfg.Format)
	}

	out, err := output(cfg)
	if err != nil {
		return err
	}
	logger.SetOutput(out)
	return nil
}

func output(cfg Config) (io.Writer, error) {
	if cfg.File == "" {
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, err
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return io.MultiWriter(os.Stderr, rotated), nil
}

// GinLogWriter forwards gin's output lines to a logrus logger.
type GinLogWriter struct {
	logger *log.Logger
}

func (w *GinLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
