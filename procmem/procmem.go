// Package procmem gives read-only access to the address space of another
// process on the same machine.
package procmem

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrProcessNotFound indicates no running process matched the requested
	// name.
	ErrProcessNotFound = errors.New("process not found")
	// ErrReadFailure indicates a read of the target's memory did not complete.
	// This covers unmapped or protected pages as well as a target which has
	// exited since it was opened.
	ErrReadFailure = errors.New("process memory read failed")
	// ErrUnsupported is returned by Open on platforms without an
	// implementation.
	ErrUnsupported = errors.New("process memory access is not supported on this platform")
)

// ModuleInfo describes a binary image loaded into a process at the time the
// module list was taken.
type ModuleInfo struct {
	Name string
	Base uint64
}

// Process is an open handle onto one process instance. All reads through a
// Process target the instance that was opened; once it exits every read fails
// even if its pid is reused.
//
// A Process is not safe for concurrent use.
type Process interface {
	Pid() int
	// Modules lists the modules currently loaded in the process. It returns an
	// empty slice if the process has exited or the list could not be read.
	Modules() []ModuleInfo
	// ReadBytes reads size bytes starting at addr. Any failure, including a
	// partial read, is reported as an error wrapping ErrReadFailure.
	ReadBytes(addr uint64, size int) ([]byte, error)
	// Close releases the OS handle. It is safe to call more than once.
	Close() error
}

// Open finds a running process by name and opens it for reading. Names are
// compared case-insensitively, e.g. "kwmusic.exe" matches "KwMusic.exe".
func Open(name string) (Process, error) {
	pid, err := findPid(gopsutilLister{}, name)
	if err != nil {
		return nil, err
	}
	return openPid(pid)
}

// FindModule returns the module named name, compared case-insensitively.
func FindModule(mods []ModuleInfo, name string) (ModuleInfo, bool) {
	for _, m := range mods {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return ModuleInfo{}, false
}

func readFailure(addr uint64, size int, cause error) error {
	if cause == nil {
		return errors.Wrapf(ErrReadFailure, "reading %d bytes at %#x", size, addr)
	}
	return errors.Wrapf(ErrReadFailure, "reading %d bytes at %#x: %v", size, addr, cause)
}
