package logging

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Global returns the process-wide logger, installing a no-op logger on first
// use when InitGlobal has not run.
func Global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewNoop()
	}
	return globalLogger
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Info logs through the global logger.
func Info(msg string, args ...any) {
	Global().Info(msg, args...)
}

// Warn logs through the global logger.
func Warn(msg string, args ...any) {
	Global().Warn(msg, args...)
}

// InitGlobal builds a logger from config and installs it globally.
// A nil config uses DefaultConfig.
func InitGlobal(config *Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// CloseGlobal flushes and closes the global logger. Later calls to Global
// get a fresh no-op logger.
func CloseGlobal() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Close()
	globalLogger = nil
	return err
}
