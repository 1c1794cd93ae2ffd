package procmem

import (
	"testing"

	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/require"
)

const wineDir = "/home/u/.wine/drive_c/Program Files/KuwoMusic/"

func TestModuleBases(t *testing.T) {
	maps := []*procfs.ProcMap{
		{StartAddr: 0x400000, Pathname: wineDir + "kwmusic.exe"},
		{StartAddr: 0x401000, Pathname: wineDir + "kwmusic.exe"},
		{StartAddr: 0x1b20000, Pathname: "[heap]"},
		{StartAddr: 0x6f001000, Pathname: wineDir + "UIDeskLyric.dll"},
		{StartAddr: 0x6f000000, Pathname: wineDir + "UIDeskLyric.dll"},
		{StartAddr: 0x7f0000000000},
		{StartAddr: 0x7f1000000000, Pathname: "/usr/lib/libgone.so (deleted)"},
		{StartAddr: 0x7ffd00000000, Pathname: "[stack]"},
	}
	require.Equal(t, []ModuleInfo{
		{Name: "kwmusic.exe", Base: 0x400000},
		{Name: "UIDeskLyric.dll", Base: 0x6f000000},
		{Name: "libgone.so", Base: 0x7f1000000000},
	}, moduleBases(maps))
}

func TestModuleBasesAnonymousOnly(t *testing.T) {
	require.Empty(t, moduleBases([]*procfs.ProcMap{
		{StartAddr: 0x1000},
		{StartAddr: 0x2000, Pathname: "[vdso]"},
	}))
	require.Empty(t, moduleBases(nil))
}
