package logger

import "go.uber.org/zap"

// Log is the process-wide logger. It defaults to a no-op logger so that
// handler packages can log from tests without calling Init.
var Log = zap.NewNop()

// Init replaces Log with the production logger. Call once at startup and
// defer Log.Sync.
func Init() {
	Log = zap.Must(zap.NewProduction())
}
