// Package logger provides leveled logging on top of the standard log package.
// Levels below the configured one are filtered; output goes to stderr so the
// analysis report on stdout stays machine-readable.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	// DebugLevel logs per-lookup detail; off by default.
	DebugLevel Level = iota
	// InfoLevel is the default priority.
	InfoLevel
	// WarnLevel marks degraded lookups that fell back to neutral defaults.
	WarnLevel
	// ErrorLevel marks skipped notices and delivery failures.
	ErrorLevel
)

// Logger filters messages by level before delegating to a *log.Logger.
type Logger struct {
	level Level
	out   *log.Logger
}

var defaultLogger *Logger

// Init configures the default logger. Unknown levels fall back to info.
// The "text" format adds the caller's file:line to each entry.
func Init(level, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.EqualFold(format, "text") {
		flags |= log.Lshortfile
	}

	defaultLogger = &Logger{
		level: parseLevel(level),
		out:   log.New(os.Stderr, "", flags),
	}
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func emit(min Level, tag, format string, args ...interface{}) {
	if defaultLogger == nil || defaultLogger.level > min {
		return
	}
	_ = defaultLogger.out.Output(3, fmt.Sprintf(tag+format, args...))
}

// Debug logs a message at DebugLevel.
func Debug(format string, args ...interface{}) {
	emit(DebugLevel, "[DEBUG] ", format, args...)
}

// Info logs a message at InfoLevel.
func Info(format string, args ...interface{}) {
	emit(InfoLevel, "[INFO] ", format, args...)
}

// Warn logs a message at WarnLevel.
func Warn(format string, args ...interface{}) {
	emit(WarnLevel, "[WARN] ", format, args...)
}

// Error logs a message at ErrorLevel.
func Error(format string, args ...interface{}) {
	emit(ErrorLevel, "[ERROR] ", format, args...)
}

// Fatal logs a message and exits with status 1.
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf("[FATAL] "+format, args...)
	if defaultLogger != nil {
		_ = defaultLogger.out.Output(2, msg)
	} else {
		log.Print(msg)
	}
	os.Exit(1)
}
