package procmem

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const processAccess = windows.PROCESS_VM_READ | windows.PROCESS_QUERY_INFORMATION | windows.SYNCHRONIZE

// windowsProcess holds a process handle. The handle keeps the process object
// alive, so a recycled pid can never be read through it.
type windowsProcess struct {
	pid       int
	h         windows.Handle
	closeOnce sync.Once
	closeErr  error
}

func openPid(pid int) (Process, error) {
	h, err := windows.OpenProcess(processAccess, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess %d: %w", pid, err)
	}
	return &windowsProcess{pid: pid, h: h}, nil
}

func (p *windowsProcess) Pid() int {
	return p.pid
}

func (p *windowsProcess) exited() bool {
	ev, err := windows.WaitForSingleObject(p.h, 0)
	return err != nil || ev == windows.WAIT_OBJECT_0
}

func (p *windowsProcess) Modules() []ModuleInfo {
	if p.exited() {
		return []ModuleInfo{}
	}

	var needed uint32
	handles := make([]windows.Handle, 256)
	for {
		size := uint32(len(handles)) * uint32(unsafe.Sizeof(handles[0]))
		// LIST_MODULES_ALL so a 64-bit reader sees a 32-bit player's modules
		if err := windows.EnumProcessModulesEx(p.h, &handles[0], size, &needed, windows.LIST_MODULES_ALL); err != nil {
			return []ModuleInfo{}
		}
		if needed <= size {
			break
		}
		handles = make([]windows.Handle, needed/uint32(unsafe.Sizeof(handles[0]))+16)
	}
	count := int(needed / uint32(unsafe.Sizeof(handles[0])))

	mods := make([]ModuleInfo, 0, count)
	var name [windows.MAX_PATH]uint16
	for _, mh := range handles[:count] {
		if err := windows.GetModuleBaseName(p.h, mh, &name[0], uint32(len(name))); err != nil {
			continue
		}
		var info windows.ModuleInfo
		if err := windows.GetModuleInformation(p.h, mh, &info, uint32(unsafe.Sizeof(info))); err != nil {
			continue
		}
		mods = append(mods, ModuleInfo{
			Name: windows.UTF16ToString(name[:]),
			Base: uint64(info.BaseOfDll),
		})
	}
	return mods
}

func (p *windowsProcess) ReadBytes(addr uint64, size int) ([]byte, error) {
	if size <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	var n uintptr
	if err := windows.ReadProcessMemory(p.h, uintptr(addr), &buf[0], uintptr(size), &n); err != nil {
		return nil, readFailure(addr, size, err)
	}
	if int(n) != size {
		return nil, readFailure(addr, size, fmt.Errorf("short read of %d bytes", n))
	}
	return buf, nil
}

func (p *windowsProcess) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = windows.CloseHandle(p.h)
	})
	return p.closeErr
}
