package overlaycam

import (
	"log/slog"

	"github.com/gogpu/overlaycam/internal/logging"
)

// SetLogger configures the logger for overlaycam and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// SetLogger is safe for concurrent use.
//
// Log levels used:
//   - [slog.LevelDebug]: state transitions, coalesced preview frames,
//     skipped layers
//   - [slog.LevelInfo]: device acquired or released, capture written
//   - [slog.LevelWarn]: device configuration errors, overlay images that
//     failed to load, font scan problems
//
// Example:
//
//	overlaycam.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger. It never returns nil.
func Logger() *slog.Logger {
	return logging.Logger()
}
