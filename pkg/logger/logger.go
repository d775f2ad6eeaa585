package logger

import (
	"go.uber.org/zap"
)

// LoggerConfig controls logger construction.
type LoggerConfig struct {
	Debug bool
}

// NewLogger creates a zap logger. Debug enables the development config with
// human-readable output and debug-level logging; otherwise a production JSON
// logger is returned.
func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
