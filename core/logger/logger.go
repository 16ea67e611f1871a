// Package logger provides the shared logger of the invocation engine.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// levelEnv selects the logging level (logrus level names).
	levelEnv = "REFLECTCALL_LOGGING_LEVEL"
	// formatEnv switches the output format; "json" selects the JSON
	// formatter.
	formatEnv = "REFLECTCALL_LOGGING_FORMAT"
)

var (
	lg   *logrus.Logger
	once sync.Once
)

// Logger returns the engine logger, configured from the environment on
// first use. The default level is warning.
func Logger() *logrus.Logger {
	once.Do(func() {
		lg = logrus.New()
		lg.SetOutput(os.Stderr)

		level := logrus.WarnLevel
		if s := os.Getenv(levelEnv); s != "" {
			if parsed, err := logrus.ParseLevel(s); err == nil {
				level = parsed
			}
		}
		lg.SetLevel(level)

		if os.Getenv(formatEnv) == "json" {
			lg.SetFormatter(&logrus.JSONFormatter{})
		}
	})

	return lg
}
