/*
The logger package wraps zerolog with the small surface the rest of this
module needs: leveled, structured logging with optional console writers and
an optional rotated log file. Sub-loggers carry a component field so the two
connection actors can be told apart in shared output.
*/
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	Trace LogLevel = "trace"
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Error LogLevel = "error"
)

func ToLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return Trace
	case "debug":
		return Debug
	case "error":
		return Error
	default:
		return Info
	}
}

type Config struct {
	// Optional writers for human-readable console output
	ConsoleWriters []io.Writer

	// If set, logs are also written to this file with rotation
	FilePath string

	// Defaults to Info when unset
	LogLevel LogLevel
}

type Logger struct {
	logger zerolog.Logger
}

func New(config *Config) (*Logger, error) {
	level := toZerologLevel(config.LogLevel)

	writers := []io.Writer{}
	for _, writer := range config.ConsoleWriters {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		})
	}

	if config.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    100, // megabytes
			MaxBackups: 10,
			MaxAge:     30, // days
		})
	}

	if len(writers) == 0 {
		return nil, fmt.Errorf("logger config must provide at least one console writer or a file path")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: logger}, nil
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Trace:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetComponentLogger returns a sub-logger tagged with the given component name
func (l *Logger) GetComponentLogger(component string) *Logger {
	return &Logger{
		logger: l.logger.With().Str("component", component).Logger(),
	}
}

func (l *Logger) Trace(msg string) {
	l.logger.Trace().Msg(msg)
}

func (l *Logger) Tracef(format string, a ...any) {
	l.logger.Trace().Msgf(format, a...)
}

func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *Logger) Debugf(format string, a ...any) {
	l.logger.Debug().Msgf(format, a...)
}

func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Infof(format string, a ...any) {
	l.logger.Info().Msgf(format, a...)
}

func (l *Logger) Error(err error) {
	l.logger.Error().Msg(err.Error())
}

func (l *Logger) Errorf(format string, a ...any) {
	l.logger.Error().Msgf(format, a...)
}
