package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"extract-viewer/internal/domain"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	level  LogLevel
	logger *log.Logger
	fields []interface{}
}

// NewLogger creates a new logger writing to stdout
func NewLogger(levelStr string) domain.Logger {
	return NewLoggerWithWriter(levelStr, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(levelStr string, w io.Writer) *AppLogger {
	return &AppLogger{
		level:  parseLogLevel(levelStr),
		logger: log.New(w, "", 0),
	}
}

// With returns a logger that prepends the given key/value pairs to every line
func (l *AppLogger) With(fields ...interface{}) *AppLogger {
	merged := make([]interface{}, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &AppLogger{level: l.level, logger: l.logger, fields: merged}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	if l.level <= INFO {
		l.log("INFO", msg, fields...)
	}
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	if l.level <= ERROR {
		allFields := append([]interface{}{"error", err}, fields...)
		l.log("ERROR", msg, allFields...)
	}
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= DEBUG {
		l.log("DEBUG", msg, fields...)
	}
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= WARN {
		l.log("WARN", msg, fields...)
	}
}

func (l *AppLogger) log(level, msg string, fields ...interface{}) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	logMsg := fmt.Sprintf("[%s] %s: %s", timestamp, level, msg)

	all := fields
	if len(l.fields) > 0 {
		all = append(append([]interface{}{}, l.fields...), fields...)
	}
	if pairs := formatFields(all); pairs != "" {
		logMsg += " " + pairs
	}

	l.logger.Println(logMsg)
}

// formatFields renders key/value pairs; a trailing key without value is dropped
func formatFields(fields []interface{}) string {
	fieldStrs := make([]string, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		fieldStrs = append(fieldStrs, fmt.Sprintf("%v=%v", fields[i], fields[i+1]))
	}
	return strings.Join(fieldStrs, " ")
}

// parseLogLevel converts string log level to LogLevel enum
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
