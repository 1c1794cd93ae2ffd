package lyricsync

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrMasterRunning indicates another master holds the master lock on this host.
var ErrMasterRunning = errors.New("another master is already running on this host")

const masterLockName = "lyricsync-master"

func masterLockPath(dir string) string {
	return filepath.Join(dir, masterLockName+".lock")
}
