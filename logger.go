package mbsim

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger builds the run logger for a scenario. Records go to console, and also to the scenario's log file when
// it names one. The level is debug when the scenario's debug flag is set, info otherwise. format is "json" or "text".
// The returned closer releases the log file and must be called once the logger is no longer used.
func NewLogger(cfg *RunConfig, console io.Writer, format string) (*slog.Logger, io.Closer, error) {
	level := "info"
	if cfg.Debug {
		level = "debug"
	}

	out := console
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		if dir := filepath.Dir(cfg.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(console, f)
		closer = f
	}

	return newLogger(level, format, out), closer, nil
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
