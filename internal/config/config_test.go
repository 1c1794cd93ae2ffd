package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ngrok/lyricsync"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, lyricsync.DefaultConfig(), s.Syncer)
	require.Equal(t, DefaultLogLevel, s.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "lyricsync.yaml", `
network:
  group: 239.1.2.3
  port: 4000
tick_interval: 150ms
lyric_duration_ms: 5000
target:
  process: other.exe
  chain:
    base_offset: 0x100
    offsets: [0x4, 0x0]
lock_dir: ""
log_level: debug
`)
	s, err := Load(path, "")
	require.NoError(t, err)

	cfg := s.Syncer
	require.Equal(t, "239.1.2.3", cfg.Network.Group)
	require.Equal(t, 4000, cfg.Network.Port)
	// untouched keys keep their defaults
	require.Equal(t, lyricsync.DefaultConfig().Network.TTL, cfg.Network.TTL)
	require.Equal(t, 150*time.Millisecond, cfg.TickInterval)
	require.EqualValues(t, 5000, cfg.LyricDurationMs)
	require.Equal(t, "other.exe", cfg.Target.ProcessName)
	require.Equal(t, "UIDeskLyric.dll", cfg.Target.ModuleName)
	require.EqualValues(t, 0x100, cfg.Target.Chain.BaseOffset)
	require.Equal(t, []int64{0x4, 0x0}, cfg.Target.Chain.Offsets)
	require.Equal(t, "", cfg.LockDir)
	require.Equal(t, "debug", s.LogLevel)
}

func TestLoadEmptyYAML(t *testing.T) {
	s, err := Load(writeFile(t, "empty.yaml", ""), "")
	require.NoError(t, err)
	require.Equal(t, lyricsync.DefaultConfig(), s.Syncer)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeFile(t, "typo.yaml", "netwrok:\n  port: 1\n"), "")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "lyricsync.yaml", "network:\n  port: 4000\n  ttl: 5\n")
	envFile := writeFile(t, ".env", "LYRICSYNC_PORT=5000\nLYRICSYNC_TTL=7\nLYRICSYNC_INTERFACE=eth9\n")
	t.Setenv("LYRICSYNC_TTL", "9")
	t.Setenv("LYRICSYNC_TICK_INTERVAL", "1s")

	s, err := Load(path, envFile)
	require.NoError(t, err)
	// environment beats .env, which beats the file
	require.Equal(t, 5000, s.Syncer.Network.Port)
	require.Equal(t, 9, s.Syncer.Network.TTL)
	require.Equal(t, "eth9", s.Syncer.Network.Interface)
	require.Equal(t, time.Second, s.Syncer.TickInterval)
}

func TestLoadBadEnv(t *testing.T) {
	for _, key := range []string{"LYRICSYNC_PORT", "LYRICSYNC_TICK_INTERVAL", "LYRICSYNC_LYRIC_DURATION_MS"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "banana")
			_, err := Load("", "")
			require.Error(t, err)
		})
	}
}

func TestLoadEnvFileOnly(t *testing.T) {
	envFile := writeFile(t, ".env", "LYRICSYNC_READ_SIZE=200\nLYRICSYNC_MAILBOX_SIZE=8\nLYRICSYNC_LYRIC_DURATION_MS=4500\nLYRICSYNC_PROCESS=other.exe\n")
	// an empty variable does not clear the key
	t.Setenv("LYRICSYNC_GROUP", "")

	s, err := Load("", envFile)
	require.NoError(t, err)
	require.Equal(t, 200, s.Syncer.Target.ReadSize)
	require.Equal(t, 8, s.Syncer.Network.MailboxSize)
	require.EqualValues(t, 4500, s.Syncer.LyricDurationMs)
	require.Equal(t, "other.exe", s.Syncer.Target.ProcessName)
	require.Equal(t, lyricsync.DefaultConfig().Network.Group, s.Syncer.Network.Group)
	require.Equal(t, lyricsync.DefaultConfig().Target.Chain, s.Syncer.Target.Chain)
}
