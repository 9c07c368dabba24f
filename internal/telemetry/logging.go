package telemetry

import (
	"log/slog"
	"os"
)

// ParseLogLevel maps a config string to a slog.Level, defaulting to Info
// for anything unrecognized (grounded on la2go's cmd/gameserver
// parseLogLevel helper).
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger installs a slog.Logger as the process default and returns
// it, the way la2go's cmd/gameserver wires up logging before anything
// else starts (so config/DB/server setup all log consistently). format
// selects the handler: "json" for slog.NewJSONHandler, anything else
// (including "text") for slog.NewTextHandler.
func InitLogger(levelStr, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(levelStr)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
