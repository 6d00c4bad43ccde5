package utils

import (
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It is usable before InitLogger runs.
var Logger = logrus.New()

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer
}

// InitLogger configures Logger and routes gin's own output through it.
func InitLogger(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.Output != nil {
		Logger.SetOutput(cfg.Output)
	} else {
		Logger.SetOutput(os.Stdout)
	}

	if err != nil && cfg.Level != "" {
		Logger.Warnf("invalid log level %q, using info", cfg.Level)
	}

	gin.DefaultWriter = &ginLogWriter{entry: Logger.WithField("component", "gin")}
	gin.DefaultErrorWriter = &ginLogWriter{entry: Logger.WithField("component", "gin"), error: true}
}

type ginLogWriter struct {
	entry *logrus.Entry
	error bool
}

func (w *ginLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if w.error {
		w.entry.Error(msg)
	} else {
		w.entry.Info(msg)
	}
	return len(p), nil
}
