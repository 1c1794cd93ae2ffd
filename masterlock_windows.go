package lyricsync

import (
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// masterLock is a named mutex. Only its existence matters; it is never
// waited on, so thread ownership is irrelevant. The mutex disappears with the
// last handle, including when the process dies.
type masterLock struct {
	h windows.Handle
	l log15.Logger
}

func acquireMasterLock(l log15.Logger, _ string) (*masterLock, error) {
	name, err := windows.UTF16PtrFromString(`Local\` + masterLockName)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(h)
		return nil, ErrMasterRunning
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not create master mutex")
	}
	l.Info("took master lock", "mutex", masterLockName)
	return &masterLock{h: h, l: l}, nil
}

func (m *masterLock) Release() error {
	m.l.Info("releasing master lock")
	return windows.CloseHandle(m.h)
}
