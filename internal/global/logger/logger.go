package logger

import "gitlab.com/develevate.net/internal/adapter/logging"

var Logger = logging.NewZapLogger()

// SetDebug swaps the global logger for one that emits debug entries
func SetDebug() {
	Logger = logging.NewDebugZapLogger()
}

func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warn(msg, args...)
}
