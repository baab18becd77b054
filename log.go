package annidx

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// defaultLogger is the package-level sink build/search diagnostics write to.
// It starts silent: library code should never be chatty unless a caller
// opts in.
var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

// SetLogLevel adjusts the verbosity of annidx's internal diagnostics. Build
// and search paths log at LevelDebug; passing LevelDebug here surfaces one
// summary line per Build and per KNNSearch/RadiusSearch call.
func SetLogLevel(level slog.Level) {
	defaultLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// logger returns the current diagnostic sink.
func logger() *slog.Logger { return defaultLogger.Load() }
