package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "marrow",
				})
				l.SetLevel(log.InfoLevel)
				singleton = &logger{l}
			})
	}
	return singleton
}

// SetLogLevel adjusts the minimum level emitted by the engine logger.
// Unknown level names are ignored and leave the current level in place.
//
// Parameters:
//   - level: one of "debug", "info", "warn", "error"
func SetLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return
	}
	getLogger().SetLevel(parsed)
}

func LogDebug(msg string, keyvals ...interface{}) {
	getLogger().Debug(msg, keyvals...)
}

func LogInfo(msg string, keyvals ...interface{}) {
	getLogger().Info(msg, keyvals...)
}

func LogWarn(msg string, keyvals ...interface{}) {
	getLogger().Warn(msg, keyvals...)
}

func LogError(msg string, keyvals ...interface{}) {
	getLogger().Error(msg, keyvals...)
}

func LogFatal(msg string, keyvals ...interface{}) {
	getLogger().Fatal(msg, keyvals...)
}
