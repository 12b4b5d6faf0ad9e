package params

import (
	"os"
	"path/filepath"
	"time"
)

var (
	CacheLastPushTTL  = 1 * 24 * time.Hour
	CacheLastKnownTTL = 7 * 24 * time.Hour
)

var DefaultBatchSize = 100_000

var DefaultChannelCap = 8096

// DedupeWindow is the half-width of the ingest duplicate window.
// A report within this many seconds of an already-stored point
// for the same employee is an idempotent duplicate.
var DedupeWindow = 5 * time.Second

var DefaultDatadirRoot = func() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fieldd")
}()
