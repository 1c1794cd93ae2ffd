package lyricsync

import (
	"os"
	"time"

	"github.com/ngrok/lyricsync/memhook"
	"github.com/ngrok/lyricsync/multicast"
)

const (
	// DefaultTickInterval is how often a Syncer polls the player or mailbox.
	DefaultTickInterval = 300 * time.Millisecond
	// DefaultLyricDuration is the display duration, in milliseconds, a master
	// attaches to each line it publishes.
	DefaultLyricDuration = 3000
)

// Config is everything a Syncer needs to know up front. It is copied into the
// Syncer and never changed afterwards.
type Config struct {
	Network multicast.Config
	// Target is only used by masters.
	Target memhook.Target

	TickInterval    time.Duration
	LyricDurationMs uint32

	// LockDir holds the lock that keeps a second master from starting on the
	// same host. Empty disables the check. Ignored on windows, where a named
	// mutex is used.
	LockDir string
}

// DefaultConfig returns the configuration for the Kuwo desktop lyric on the
// well-known multicast group.
func DefaultConfig() Config {
	return Config{
		Network:         multicast.DefaultConfig(),
		Target:          memhook.DefaultTarget(),
		TickInterval:    DefaultTickInterval,
		LyricDurationMs: DefaultLyricDuration,
		LockDir:         os.TempDir(),
	}
}
