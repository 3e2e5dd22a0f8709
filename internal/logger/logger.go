package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

var (
	log          zerolog.Logger
	currentLevel = LogLevelInfo
)

func init() {
	SetOutput(os.Stderr)
}

// SetLevel sets the minimum log level to display
func SetLevel(level LogLevel) {
	currentLevel = level
	log = log.Level(zerologLevel(level))
}

// ParseLevel maps a configuration string to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarning, nil
	case "error":
		return LogLevelError, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetOutput sets the output destination for the logger.
// Writers other than a terminal get plain console lines without colour.
func SetOutput(w io.Writer) {
	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    w != os.Stderr && w != os.Stdout,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger().Level(zerologLevel(currentLevel))
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func tagPrefix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf("[%s] ", strings.Join(tags, "]["))
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// DebugTagged logs a debug message with tags
func DebugTagged(tags []string, format string, v ...interface{}) {
	log.Debug().Msgf(tagPrefix(tags)+format, v...)
}

// Info logs an informational message
func Info(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// InfoTagged logs an informational message with tags
func InfoTagged(tags []string, format string, v ...interface{}) {
	log.Info().Msgf(tagPrefix(tags)+format, v...)
}

// Warning logs a warning message
func Warning(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// WarningTagged logs a warning message with tags
func WarningTagged(tags []string, format string, v ...interface{}) {
	log.Warn().Msgf(tagPrefix(tags)+format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

// ErrorTagged logs an error message with tags
func ErrorTagged(tags []string, format string, v ...interface{}) {
	log.Error().Msgf(tagPrefix(tags)+format, v...)
}
