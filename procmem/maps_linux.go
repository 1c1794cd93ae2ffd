package procmem

import (
	"path"
	"strings"

	"github.com/prometheus/procfs"
)

// moduleBases folds a process's memory mappings into a module list. Every
// file-backed mapping contributes to the module named after the file's base
// name; the module's base is the lowest address any of its mappings start at.
// Anonymous and pseudo mappings ([heap], [stack], ...) are ignored.
func moduleBases(maps []*procfs.ProcMap) []ModuleInfo {
	var mods []ModuleInfo
	index := map[string]int{}
	for _, m := range maps {
		file := strings.TrimSuffix(m.Pathname, " (deleted)")
		if !strings.HasPrefix(file, "/") {
			continue
		}
		base := uint64(m.StartAddr)

		// wine paths keep their windows casing; match on the base name only
		name := path.Base(file)
		if i, ok := index[name]; ok {
			if base < mods[i].Base {
				mods[i].Base = base
			}
			continue
		}
		index[name] = len(mods)
		mods = append(mods, ModuleInfo{Name: name, Base: base})
	}
	return mods
}
