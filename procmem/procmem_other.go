//go:build !linux && !windows

package procmem

import "github.com/pkg/errors"

func openPid(pid int) (Process, error) {
	return nil, errors.Wrapf(ErrUnsupported, "opening pid %d", pid)
}
