package infra

import (
	"log"
	"strings"
	"sync/atomic"
)

// Log levels, lowest first.
const (
	LevelDebug int32 = iota
	LevelInfo
	LevelWarn
	LevelError
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(LevelInfo)
}

// SetLogLevel sets the minimum level written by the helpers below.
// Unknown names fall back to info.
func SetLogLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		logLevel.Store(LevelDebug)
	case "warn", "warning":
		logLevel.Store(LevelWarn)
	case "error":
		logLevel.Store(LevelError)
	default:
		logLevel.Store(LevelInfo)
	}
}

// SetLogFormat switches between the default text layout and a compact one
// without timestamps (for journald and friends).
func SetLogFormat(format string) {
	switch strings.ToLower(format) {
	case "plain":
		log.SetFlags(0)
	default:
		log.SetFlags(log.LstdFlags)
	}
}

func logf(level int32, prefix, format string, args ...any) {
	if level < logLevel.Load() {
		return
	}
	log.Printf(prefix+" "+format, args...)
}

func Debugf(format string, args ...any) { logf(LevelDebug, "[DEBUG]", format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, "[INFO]", format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, "[WARN]", format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, "[ERROR]", format, args...) }
