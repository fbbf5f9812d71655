package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
)

// NewLogger builds the process logger for one binary. Development gets debug
// level text output, everything else JSON at info; cfg.LogLevel overrides the
// level. Every entry carries app, component and env.
func NewLogger(cfg *config.Config, component string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.LogLevel != "" {
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, keeping default")
		}
	}
	logger.AddHook(staticFields{"app": cfg.AppName, "component": component, "env": cfg.Env})
	logger.Debug("logger initialized")
	return logger
}

// staticFields stamps fixed fields on every entry without overriding ones the
// caller set.
type staticFields logrus.Fields

func (h staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h staticFields) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}

// NewNopLogger returns a logger that discards output, for tests and tools.
func NewNopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// LogError logs msg at error level with err folded into fields.
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields[logrus.ErrorKey] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}

func LogInfo(logger logrus.FieldLogger, msg string, fields logrus.Fields) {
	logger.WithFields(fields).Info(msg)
}
