package logger

import (
	"strings"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/rs/zerolog"
)

// Format selects how records are rendered
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
	FormatText    Format = "text"
)

// LoggerConfig is the resolved form of config.LogConfig
type LoggerConfig struct {
	Level      zerolog.Level
	Format     Format
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	// RunID tags every record and places the log file under runs/<RunID>/
	RunID string
}

// DefaultLoggerConfig logs info and above to the console only
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
	}
}

// ParseLevel maps a level name to zerolog. Empty means info.
func ParseLevel(raw string) (zerolog.Level, error) {
	if strings.TrimSpace(raw) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a format name, falling back to console
func ParseFormat(raw string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatConsole
	}
}

// fromLogConfig resolves the file config. An invalid level was already
// rejected by config validation, so it falls back to info here.
func fromLogConfig(cfg config.LogConfig) LoggerConfig {
	level, _ := ParseLevel(cfg.LogLevel)
	return LoggerConfig{
		Level:      level,
		Format:     ParseFormat(cfg.LogFormat),
		FilePath:   cfg.LogFile,
		MaxSizeMB:  orDefault(cfg.MaxLogSizeMB, config.DefaultMaxLogSizeMB),
		MaxBackups: orDefault(cfg.MaxLogBackups, config.DefaultMaxLogBackups),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
