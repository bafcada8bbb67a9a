// internal/logger/logger.go
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a configured logrus logger. Packages hold their own
// instance as a customLog variable; level comes from LOG_LEVEL when set.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if lvlStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if lvl, err := logrus.ParseLevel(lvlStr); err == nil {
			log.SetLevel(lvl)
		}
	}

	return log
}
