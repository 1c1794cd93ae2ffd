package procmem

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

// linuxProcess pins its target with a pidfd. Signalling the pidfd fails with
// ESRCH once the original process has exited, regardless of pid reuse, so it
// is checked around every access.
type linuxProcess struct {
	pid   int
	pidfd int
	// signal sends signal 0 through the pidfd.
	signal    func() error
	closeOnce sync.Once
	closeErr  error
}

func openPid(pid int) (Process, error) {
	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		return nil, fmt.Errorf("pidfd_open %d: %w", pid, err)
	}
	p := &linuxProcess{pid: pid, pidfd: fd}
	p.signal = func() error {
		return unix.PidfdSendSignal(p.pidfd, 0, nil, 0)
	}
	return p, nil
}

func (p *linuxProcess) Pid() int {
	return p.pid
}

func (p *linuxProcess) alive() bool {
	return p.signal() == nil
}

func (p *linuxProcess) Modules() []ModuleInfo {
	if !p.alive() {
		return []ModuleInfo{}
	}
	proc, err := procfs.NewProc(p.pid)
	if err != nil {
		return []ModuleInfo{}
	}
	maps, err := proc.ProcMaps()
	if err != nil {
		return []ModuleInfo{}
	}
	mods := moduleBases(maps)
	// the pid may have been reused while the maps were read
	if mods == nil || !p.alive() {
		return []ModuleInfo{}
	}
	return mods
}

func (p *linuxProcess) ReadBytes(addr uint64, size int) ([]byte, error) {
	if size <= 0 {
		return []byte{}, nil
	}
	if !p.alive() {
		return nil, readFailure(addr, size, unix.ESRCH)
	}
	buf := make([]byte, size)
	local := []unix.Iovec{{Base: (*byte)(unsafe.Pointer(&buf[0]))}}
	local[0].SetLen(size)
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: size}}
	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return nil, readFailure(addr, size, err)
	}
	if n != size {
		return nil, readFailure(addr, size, fmt.Errorf("short read of %d bytes", n))
	}
	// process_vm_readv goes by pid, which may have been reused during the read
	if !p.alive() {
		return nil, readFailure(addr, size, unix.ESRCH)
	}
	return buf, nil
}

func (p *linuxProcess) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = unix.Close(p.pidfd)
	})
	return p.closeErr
}
