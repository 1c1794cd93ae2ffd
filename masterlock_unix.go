//go:build unix

package lyricsync

import (
	"os"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/rkt/rkt/pkg/lock"
)

// masterLock is an exclusive flock on a file in the lock directory. The
// kernel drops it if the process dies, so a crashed master never blocks the
// next one.
type masterLock struct {
	lock *lock.FileLock
	l    log15.Logger
}

func touchFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

func acquireMasterLock(l log15.Logger, dir string) (*masterLock, error) {
	path := masterLockPath(dir)
	l = l.New("lock", path)
	if err := touchFile(path); err != nil {
		return nil, errors.Wrap(err, "could not create master lock file")
	}
	fl, err := lock.TryExclusiveLock(path, lock.RegFile)
	if err == lock.ErrLocked {
		return nil, ErrMasterRunning
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not take master lock")
	}
	l.Info("took master lock")
	return &masterLock{lock: fl, l: l}, nil
}

func (m *masterLock) Release() error {
	m.l.Info("releasing master lock")
	return m.lock.Close()
}
