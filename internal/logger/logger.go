// Package logger provides the small leveled file+stderr logger the core's
// components share, mirroring the teacher's logger.Init/Info/Warn/Error/
// Close call sites (no concrete source for that package was retrieved; this
// rebuilds it to the shape main.go expects).
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func parseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerConfig configures a Logger instance.
type LoggerConfig struct {
	LogPath     string
	LogLevel    string
	MaxLogFiles int
}

// Logger writes leveled lines to a file (rotated by MaxLogFiles) and
// mirrors every written line to stderr.
type Logger struct {
	mu    sync.Mutex
	level Level
	file  *os.File
	std   *log.Logger
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// InitLogger installs the process-wide default logger, rotating any
// existing log file per cfg.MaxLogFiles.
func InitLogger(cfg LoggerConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return nil
}

// New constructs a standalone Logger without installing it as the default.
func New(cfg LoggerConfig) (*Logger, error) {
	l := &Logger{level: parseLevel(cfg.LogLevel)}

	if cfg.LogPath == "" {
		l.std = log.New(os.Stderr, "", log.LstdFlags)
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("logger: creating log directory: %w", err)
	}

	rotate(cfg.LogPath, maxOr(cfg.MaxLogFiles, 10))

	f, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: opening log file: %w", err)
	}
	l.file = f
	l.std = log.New(io.MultiWriter(f, os.Stderr), "", log.LstdFlags)
	return l, nil
}

func maxOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

// rotate renames an existing log file aside with a timestamp suffix and
// prunes old rotations beyond maxFiles.
func rotate(path string, maxFiles int) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return
	}

	rotated := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102-150405"))
	_ = os.Rename(path, rotated)

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var rotations []string
	for _, e := range entries {
		if !e.IsDir() && len(e.Name()) > len(base) && e.Name()[:len(base)] == base && e.Name() != base {
			rotations = append(rotations, e.Name())
		}
	}
	if len(rotations) <= maxFiles {
		return
	}
	// Oldest-first: rotation suffixes are timestamps, so lexical sort works.
	for i := 0; i < len(rotations)-maxFiles; i++ {
		_ = os.Remove(filepath.Join(dir, rotations[i]))
	}
}

func (l *Logger) log(level Level, prefix, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.std.Printf("[%s] %s", prefix, msg)
}

func (l *Logger) Debug(msg string) { l.log(LevelDebug, "DEBUG", msg) }
func (l *Logger) Info(msg string)  { l.log(LevelInfo, "INFO", msg) }
func (l *Logger) Warn(msg string)  { l.log(LevelWarn, "WARN", msg) }
func (l *Logger) Error(msg string) { l.log(LevelError, "ERROR", msg) }

// Close flushes and closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Package-level helpers delegate to the installed default logger, matching
// the teacher's logger.Info(...) call-site style in main.go.

func Debug(msg string) { withDefault(func(l *Logger) { l.Debug(msg) }) }
func Info(msg string)  { withDefault(func(l *Logger) { l.Info(msg) }) }
func Warn(msg string)  { withDefault(func(l *Logger) { l.Warn(msg) }) }
func Error(msg string) { withDefault(func(l *Logger) { l.Error(msg) }) }

func Close() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}

func withDefault(f func(*Logger)) {
	defaultMu.Lock()
	l := defaultLogger
	defaultMu.Unlock()
	if l == nil {
		log.Println(msgFallback())
		return
	}
	f(l)
}

func msgFallback() string {
	return "logger: default logger not initialized"
}
