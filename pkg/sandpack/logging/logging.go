// Package logging provides component loggers for the sandpack tools.
// The generator, the viewer server and the watcher share this package.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info", ConsoleLevel: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("generator")
//	logger.Info("manifest written", "project", "counter")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty disables the file sink.
	Path string

	// Components maps component names to their log levels.
	Components map[string]string

	// ConsoleLevel enables stderr output at the given level.
	// Empty disables console output.
	ConsoleLevel string

	// Console overrides the console writer. Nil means os.Stderr.
	Console io.Writer
}

// Logger wraps charmbracelet/log with component identification.
// Loggers may be held in package-level variables: Init and Close swap
// their sinks in place.
type Logger struct {
	component string
	parent    *Logger
	args      []interface{}

	mu      sync.RWMutex
	file    *log.Logger
	console *log.Logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// Component returns the component name the logger was created for.
func (l *Logger) Component() string {
	return l.component
}

// With returns a logger that prefixes every entry with the given key/value pairs.
func (l *Logger) With(args ...interface{}) *Logger {
	root := l
	var ctx []interface{}
	if l.parent != nil {
		root = l.parent
		ctx = append(ctx, l.args...)
	}
	ctx = append(ctx, args...)
	return &Logger{component: l.component, parent: root, args: ctx}
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	root := l
	if l.parent != nil {
		root = l.parent
		args = append(append([]interface{}{}, l.args...), args...)
	}

	root.mu.RLock()
	file, console := root.file, root.console
	root.mu.RUnlock()

	if file != nil {
		logTo(file, level, msg, args...)
	}
	if console != nil {
		logTo(console, level, msg, args...)
	}
}

func (l *Logger) setSinks(file, console *log.Logger) {
	l.mu.Lock()
	l.file, l.console = file, console
	l.mu.Unlock()
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

type state struct {
	mu          sync.RWMutex
	initialized bool
	file        *os.File
	console     io.Writer
	level       Level
	consoleOn   bool
	consoleLvl  Level
	components  map[string]Level
	loggers     map[string]*Logger
}

var globalState = &state{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system with the given configuration.
// It may be called again to reconfigure; existing loggers follow.
// Before Init is called, all loggers are silent.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	consoleOn := false
	consoleLvl := LevelInfo
	if cfg.ConsoleLevel != "" {
		consoleLvl, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		consoleOn = true
	}

	var file *os.File
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		_ = globalState.file.Close()
	}

	globalState.file = file
	globalState.console = cfg.Console
	if globalState.console == nil {
		globalState.console = os.Stderr
	}
	globalState.level = level
	globalState.components = components
	globalState.consoleOn = consoleOn
	globalState.consoleLvl = consoleLvl
	globalState.initialized = true

	for component, logger := range globalState.loggers {
		logger.setSinks(buildSinks(component))
	}

	return nil
}

// Get returns the logger for the given component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.RLock()
	if logger, ok := globalState.loggers[component]; ok {
		globalState.mu.RUnlock()
		return logger
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := &Logger{component: component}
	logger.setSinks(buildSinks(component))
	globalState.loggers[component] = logger
	return logger
}

// buildSinks must be called with globalState.mu held.
func buildSinks(component string) (file, console *log.Logger) {
	if !globalState.initialized {
		return nil, nil
	}

	level := globalState.level
	compLevel, hasOverride := globalState.components[component]
	if hasOverride {
		level = compLevel
	}

	if globalState.file != nil {
		file = log.NewWithOptions(globalState.file, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		})
	}

	if globalState.consoleOn {
		consoleLevel := globalState.consoleLvl
		if hasOverride {
			consoleLevel = compLevel
		}
		console = log.NewWithOptions(globalState.console, log.Options{
			Level:           consoleLevel.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}

	return file, console
}

// Close closes the log file and silences all loggers.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	var closeErr error
	if globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			closeErr = fmt.Errorf("closing log file: %w", err)
		}
		globalState.file = nil
	}

	globalState.initialized = false
	globalState.consoleOn = false
	globalState.components = make(map[string]Level)
	for _, logger := range globalState.loggers {
		logger.setSinks(nil, nil)
	}

	return closeErr
}

// DefaultLogPath returns $XDG_STATE_HOME/sandpack/sandpack.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "sandpack", "sandpack.log")
}
