package memhook

import (
	"encoding/binary"

	"github.com/ngrok/lyricsync/procmem"
	"github.com/pkg/errors"
)

// fakeProcess is an in-memory procmem.Process. Memory is a set of regions
// keyed by start address.
type fakeProcess struct {
	pid     int
	modules []procmem.ModuleInfo
	mem     map[uint64][]byte
	failAt  map[uint64]bool

	reads  []uint64
	closed int
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{
		pid:    1234,
		mem:    map[uint64][]byte{},
		failAt: map[uint64]bool{},
	}
}

func (f *fakeProcess) putPointer(addr uint64, v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	f.mem[addr] = b
}

func (f *fakeProcess) Pid() int {
	return f.pid
}

func (f *fakeProcess) Modules() []procmem.ModuleInfo {
	return f.modules
}

func (f *fakeProcess) ReadBytes(addr uint64, size int) ([]byte, error) {
	f.reads = append(f.reads, addr)
	if f.failAt[addr] {
		return nil, errors.Wrapf(procmem.ErrReadFailure, "at %#x", addr)
	}
	for start, region := range f.mem {
		if addr >= start && addr+uint64(size) <= start+uint64(len(region)) {
			out := make([]byte, size)
			copy(out, region[addr-start:])
			return out, nil
		}
	}
	return nil, errors.Wrapf(procmem.ErrReadFailure, "unmapped %#x", addr)
}

func (f *fakeProcess) Close() error {
	f.closed++
	return nil
}

func (f *fakeProcess) readAt(addr uint64) bool {
	for _, r := range f.reads {
		if r == addr {
			return true
		}
	}
	return false
}
