package procmem

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
)

// processLister enumerates running processes. It is an interface so that name
// matching can be exercised without real processes.
type processLister interface {
	Processes() ([]processEntry, error)
}

type processEntry struct {
	Pid  int
	Name string
}

type gopsutilLister struct{}

func (gopsutilLister) Processes() ([]processEntry, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	entries := make([]processEntry, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// raced with exit, or not ours to inspect
			continue
		}
		entries = append(entries, processEntry{Pid: int(p.Pid), Name: name})
	}
	return entries, nil
}

// findPid returns the lowest pid whose name matches. The lowest pid is usually
// the longest-lived instance when a player spawns helper processes with the
// same image name.
func findPid(lister processLister, name string) (int, error) {
	entries, err := lister.Processes()
	if err != nil {
		return 0, errors.Wrap(err, "could not list processes")
	}
	found := 0
	for _, e := range entries {
		if !strings.EqualFold(e.Name, name) {
			continue
		}
		if found == 0 || e.Pid < found {
			found = e.Pid
		}
	}
	if found == 0 {
		return 0, errors.Wrapf(ErrProcessNotFound, "no process named %q", name)
	}
	return found, nil
}
