package logger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once     sync.Once
	instance *logrus.Logger
)

func GetLogger() *logrus.Logger {
	once.Do(func() {
		instance = logrus.New()
		instance.SetFormatter(&logrus.JSONFormatter{})
		instance.SetLevel(logrus.InfoLevel)
	})
	return instance
}

// SetLevel parses a logrus level name; unknown names keep the current level.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		GetLogger().Warnf("unknown log level %q, keeping %s", level, GetLogger().GetLevel())
		return
	}
	GetLogger().SetLevel(parsed)
}
