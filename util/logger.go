package util

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

var (
	globalLogger Logger = defaultLogger{}
	globalLock   sync.Mutex
)

// SetLogger swaps the package-wide logger. Panics on nil so a misconfigured
// embedder fails loudly at startup instead of losing logs silently.
func SetLogger(l Logger) {
	if l == nil {
		panic("Can't set the logger to nil")
	}

	globalLock.Lock()
	globalLogger = l
	globalLock.Unlock()
}

func Infof(format string, a ...any) {
	globalLogger.Infof(format, a...)
}

func Debugf(format string, a ...any) {
	globalLogger.Debugf(format, a...)
}

func Warnf(format string, a ...any) {
	globalLogger.Warnf(format, a...)
}

func Errorf(format string, a ...any) error {
	return globalLogger.Errorf(format, a...)
}

type Logger interface {
	// Infof - Info level print
	Infof(format string, a ...any)
	// Debugf - Debug level print, mostly used for information/tracing
	Debugf(format string, a ...any)
	// Warnf - Warn level print, something that might be a problem
	Warnf(format string, a ...any)
	// Errorf - Error level print - returns an error
	Errorf(format string, a ...any) error
}

type defaultLogger struct{}

func (defaultLogger) Debugf(format string, a ...any) {
	log.Printf("DEBUG: "+terminated(format), a...)
}

func (defaultLogger) Infof(format string, a ...any) {
	log.Printf("INFO: "+terminated(format), a...)
}

func (defaultLogger) Warnf(format string, a ...any) {
	log.Printf("WARN: "+terminated(format), a...)
}

func (defaultLogger) Errorf(format string, a ...any) error {
	log.Printf("ERROR: "+terminated(format), a...)
	return fmt.Errorf(format, a...)
}

func terminated(format string) string {
	if !strings.HasSuffix(format, "\n") {
		return format + "\n"
	}
	return format
}

// DiscardLogger drops everything. Used in tests.
type DiscardLogger struct{}

func (DiscardLogger) Infof(_ string, _ ...any) {}

func (DiscardLogger) Debugf(_ string, _ ...any) {}

func (DiscardLogger) Warnf(_ string, _ ...any) {}

func (DiscardLogger) Errorf(_ string, _ ...any) error {
	return nil
}
