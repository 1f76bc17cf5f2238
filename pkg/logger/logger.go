package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	isDev bool
)

var sugar = zap.NewNop().Sugar()

// Init builds the process logger. Development gets the human readable zap
// config with debug output; anything else logs JSON at info level.
func Init(environment string) error {
	var (
		base *zap.Logger
		err  error
	)

	if environment == "development" {
		base, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		base, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	sugar = base.Sugar()
	isDev = environment == "development"
	mu.Unlock()

	return nil
}

// Sync flushes buffered entries, call it before exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	mu.RLock()
	dev := isDev
	mu.RUnlock()
	if dev {
		current().Debugf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

// LogCleanupFailure records a storage object that could not be removed.
func LogCleanupFailure(storagePath, reason string, err error) {
	Warn("Storage cleanup failed: reason=%s, path=%s, error=%v", reason, storagePath, err)
}
