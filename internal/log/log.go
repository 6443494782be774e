// Package log writes roster's debug log: one line per entry with a level, a
// category and key=value fields. Nothing is written until Init or InitWriter
// is called, which the CLI does for --debug or ROSTER_DEBUG.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config value to a Level. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatLoader   Category = "loader"   // Resource discovery and parsing
	CatRegistry Category = "registry" // Classification and publication
	CatConfig   Category = "config"   // Configuration loading/saving
	CatWatcher  Category = "watcher"  // File watcher events
	CatCache    Category = "cache"    // Dispatch cache
	CatDB       Category = "db"       // Catalog database
	CatTrace    Category = "trace"    // Tracing setup
	CatAPI      Category = "api"      // HTTP endpoint
)

type logger struct {
	mu       sync.Mutex
	w        io.Writer
	minLevel Level
}

var (
	mu     sync.RWMutex
	active *logger
)

// Init appends log lines to the file at path. The returned function closes
// the file and stops logging.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user's debug log
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	InitWriter(f)
	return func() {
		install(nil)
		_ = f.Close()
	}, nil
}

// InitWriter sends log lines to w at debug level.
func InitWriter(w io.Writer) {
	install(&logger{w: w, minLevel: LevelDebug})
}

func install(l *logger) {
	mu.Lock()
	active = l
	mu.Unlock()
}

func current() *logger {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// SetMinLevel drops entries below level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { write(LevelInfo, cat, msg, fields) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { write(LevelWarn, cat, msg, fields) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err as the trailing error field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	value := "<nil>"
	if err != nil {
		value = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", value))
}

// write formats one entry:
//
//	2026-10-14T10:45:00 [ERROR] [registry] reload failed source=./app error=...
func write(level Level, cat Category, msg string, fields []any) {
	l := current()
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&sb, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	sb.WriteByte('\n')
	_, _ = io.WriteString(l.w, sb.String())
}
