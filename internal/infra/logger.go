package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/juliosincable/infourbi/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ConfigureLogger installs the global logger: pretty console output in
// development, JSON otherwise, plus a rotated JSON file when LOG_FILE is
// set. The returned Closer flushes the file on shutdown.
func ConfigureLogger(cfg *config.Config) io.Closer {
	var out io.Writer = os.Stderr
	if !cfg.IsProduction() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	return closer
}
