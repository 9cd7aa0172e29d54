// Package logging provides structured logging for compprune.
// It wraps zerolog with a rotating log file and an optional console writer.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log severity levels.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toZerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a config string ("debug", "info", ...) into a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Config configures the logger.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// LogDir is the directory to write log files (e.g., ".compprune/logs").
	// Empty disables file logging.
	LogDir string
	// MaxLogFiles is the number of rotated log files to keep.
	MaxLogFiles int
	// MaxLogAge is the maximum age of rotated log files.
	MaxLogAge time.Duration
	// MaxSizeMB is the size at which the active log file is rotated.
	MaxSizeMB int
	// Console enables logging to stderr in addition to the file.
	Console bool
	// JSONFormat writes raw JSON to the console instead of the pretty console format.
	JSONFormat bool
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:       LevelInfo,
		LogDir:      ".compprune/logs",
		MaxLogFiles: 10,
		MaxLogAge:   7 * 24 * time.Hour,
		MaxSizeMB:   10,
		Console:     true,
		JSONFormat:  false,
	}
}

// LogFileName is the name of the active log file inside Config.LogDir.
const LogFileName = "compprune.log"

// Logger is a structured logger for compprune.
type Logger struct {
	zl      zerolog.Logger
	config  *Config
	file    *lumberjack.Logger
	logPath string
	mu      sync.Mutex
}

// New creates a new logger with the given configuration.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := &Logger{config: config}

	var writers []io.Writer
	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logger.logPath = filepath.Join(config.LogDir, LogFileName)
		logger.file = &lumberjack.Logger{
			Filename:   logger.logPath,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxLogFiles,
			MaxAge:     int(config.MaxLogAge / (24 * time.Hour)),
		}
		writers = append(writers, logger.file)
	}
	if config.Console {
		if config.JSONFormat {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.Kitchen,
			})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	logger.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(config.Level.toZerolog()).
		With().Timestamp().Logger()

	return logger, nil
}

// NewWithWriter creates a logger that writes JSON lines to w.
// Useful in tests that assert on log output.
func NewWithWriter(w io.Writer, level Level) *Logger {
	return &Logger{
		zl:     zerolog.New(w).Level(level.toZerolog()).With().Timestamp().Logger(),
		config: DefaultConfig(),
	}
}

// NewNoop creates a no-op logger that discards all output.
func NewNoop() *Logger {
	return &Logger{
		zl:     zerolog.Nop(),
		config: DefaultConfig(),
	}
}

// LogPath returns the path to the current log file, or "" when file logging is off.
func (l *Logger) LogPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logPath
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Debug logs a debug message with alternating key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(l.zl.Debug(), msg, args)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(l.zl.Info(), msg, args)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(l.zl.Warn(), msg, args)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(l.zl.Error(), msg, args)
}

func (l *Logger) log(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	if len(args) > 0 {
		e = e.Fields(normalize(args))
	}
	e.Msg(msg)
}

// normalize turns error values into strings so they render in both the
// console and JSON writers, and pads a dangling key.
func normalize(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for _, a := range args {
		if err, ok := a.(error); ok {
			out = append(out, err.Error())
			continue
		}
		out = append(out, a)
	}
	if len(out)%2 != 0 {
		out = append(out, "")
	}
	return out
}

// With returns a new logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		zl:      l.zl.With().Fields(normalize(args)).Logger(),
		config:  l.config,
		file:    l.file,
		logPath: l.logPath,
	}
}

// Component returns a logger tagged with the given component name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Writer returns an io.Writer that logs each line at the given level.
// Useful for capturing output from external commands.
func (l *Logger) Writer(level Level) io.Writer {
	return &logWriter{
		logger: l,
		level:  level,
	}
}

// logWriter adapts the logger to io.Writer.
type logWriter struct {
	logger *Logger
	level  Level
	buf    []byte
}

// Write implements io.Writer, logging each complete line.
func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf[:idx])
		w.buf = w.buf[idx+1:]
		w.emit(line)
	}
	return len(p), nil
}

// Flush writes any remaining buffered data.
func (w *logWriter) Flush() {
	if len(w.buf) > 0 {
		line := string(w.buf)
		w.buf = nil
		w.emit(line)
	}
}

func (w *logWriter) emit(line string) {
	switch w.level {
	case LevelDebug:
		w.logger.Debug(line)
	case LevelInfo:
		w.logger.Info(line)
	case LevelWarn:
		w.logger.Warn(line)
	case LevelError:
		w.logger.Error(line)
	}
}
