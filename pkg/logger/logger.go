package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Leveled logger for the blog admin service.
// - zero external deps
// - Init(level) once at startup, then Debugf/Infof/Warnf/Errorf/Fatalf

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	out     = log.New(os.Stdout, "", 0)
	current atomic.Int32
)

func init() {
	current.Store(int32(LevelInfo))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown or empty values fall back to info.
func Init(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		current.Store(int32(LevelDebug))
	case "warn", "warning":
		current.Store(int32(LevelWarn))
	case "error":
		current.Store(int32(LevelError))
	case "fatal":
		current.Store(int32(LevelFatal))
	default:
		current.Store(int32(LevelInfo))
	}
}

// LevelString returns the current level as text.
func LevelString() string {
	switch Level(current.Load()) {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

func logf(l Level, tag, format string, v ...interface{}) {
	if l < Level(current.Load()) {
		return
	}
	out.Printf(time.Now().Format(time.RFC3339)+" ["+tag+"] "+format, v...)
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, "DEBUG", format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, "INFO", format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, "WARN", format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, "ERROR", format, v...) }

func Fatalf(format string, v ...interface{}) {
	logf(LevelFatal, "FATAL", format, v...)
	os.Exit(1)
}

// Single-string helpers.
func Debug(msg string) { Debugf("%s", msg) }
func Info(msg string)  { Infof("%s", msg) }
func Warn(msg string)  { Warnf("%s", msg) }
func Error(msg string) { Errorf("%s", msg) }

// Println maps to Info; kept for brief startup messages.
func Println(v ...interface{}) { Infof("%s", strings.TrimSuffix(fmt.Sprintln(v...), "\n")) }
