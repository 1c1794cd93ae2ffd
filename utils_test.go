package lyricsync

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"
	fakeclock "k8s.io/utils/clock/testing"
)

var l = log15.New()

func tmpDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "lyricsync_test")
	if err != nil {
		panic(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// testConfig has no master lock and a tick that never fires on its own under
// a fake clock.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LockDir = ""
	return cfg
}

func newTestSyncer(t *testing.T, cfg Config, role Role, opts ...Option) (*Syncer, *fakeclock.FakeClock) {
	clk := fakeclock.NewFakeClock(time.Now())
	opts = append([]Option{WithLogger(l), WithClock(clk)}, opts...)
	s, err := New(testCtx(t), cfg, role, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clk
}
