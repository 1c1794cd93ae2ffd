// Package config loads lyricsync settings from an optional YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, a .env file,
// then the process environment. Only keys that are present override.
package config

import (
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/ngrok/lyricsync"
	"github.com/ngrok/lyricsync/memhook"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "LYRICSYNC_"

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

// Settings is the loaded configuration.
type Settings struct {
	Syncer   lyricsync.Config
	LogLevel string
}

type chainFile struct {
	BaseOffset int64   `yaml:"base_offset"`
	Offsets    []int64 `yaml:"offsets"`
}

// file mirrors the YAML layout. env tags name the LYRICSYNC_* variable that
// overrides a key; an empty variable counts as unset.
type file struct {
	Network struct {
		Group       string        `yaml:"group" env:"GROUP"`
		Port        int           `yaml:"port" env:"PORT"`
		TTL         int           `yaml:"ttl" env:"TTL"`
		Interface   string        `yaml:"interface" env:"INTERFACE"`
		ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		MailboxSize int           `yaml:"mailbox_size" env:"MAILBOX_SIZE"`
	} `yaml:"network"`
	Target struct {
		Process  string    `yaml:"process" env:"PROCESS"`
		Module   string    `yaml:"module" env:"MODULE"`
		Encoding string    `yaml:"encoding" env:"ENCODING"`
		ReadSize int       `yaml:"read_size" env:"READ_SIZE"`
		Chain    chainFile `yaml:"chain"`
	} `yaml:"target"`
	TickInterval    time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	LyricDurationMs uint32        `yaml:"lyric_duration_ms" env:"LYRIC_DURATION_MS"`
	LockDir         string        `yaml:"lock_dir" env:"LOCK_DIR"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL"`
}

func defaults() file {
	cfg := lyricsync.DefaultConfig()
	var f file
	f.Network.Group = cfg.Network.Group
	f.Network.Port = cfg.Network.Port
	f.Network.TTL = cfg.Network.TTL
	f.Network.Interface = cfg.Network.Interface
	f.Network.ReadTimeout = cfg.Network.ReadTimeout
	f.Network.MailboxSize = cfg.Network.MailboxSize
	f.Target.Process = cfg.Target.ProcessName
	f.Target.Module = cfg.Target.ModuleName
	f.Target.Encoding = cfg.Target.Encoding
	f.Target.ReadSize = cfg.Target.ReadSize
	f.Target.Chain = chainFile{
		BaseOffset: cfg.Target.Chain.BaseOffset,
		Offsets:    append([]int64(nil), cfg.Target.Chain.Offsets...),
	}
	f.TickInterval = cfg.TickInterval
	f.LyricDurationMs = cfg.LyricDurationMs
	f.LockDir = cfg.LockDir
	f.LogLevel = DefaultLogLevel
	return f
}

func (f file) settings() Settings {
	cfg := lyricsync.DefaultConfig()
	cfg.Network.Group = f.Network.Group
	cfg.Network.Port = f.Network.Port
	cfg.Network.TTL = f.Network.TTL
	cfg.Network.Interface = f.Network.Interface
	cfg.Network.ReadTimeout = f.Network.ReadTimeout
	cfg.Network.MailboxSize = f.Network.MailboxSize
	cfg.Target = memhook.Target{
		ProcessName: f.Target.Process,
		ModuleName:  f.Target.Module,
		Chain: memhook.OffsetChain{
			BaseOffset: f.Target.Chain.BaseOffset,
			Offsets:    f.Target.Chain.Offsets,
		},
		ReadSize: f.Target.ReadSize,
		Encoding: f.Target.Encoding,
	}
	cfg.TickInterval = f.TickInterval
	cfg.LyricDurationMs = f.LyricDurationMs
	cfg.LockDir = f.LockDir
	return Settings{Syncer: cfg, LogLevel: f.LogLevel}
}

// Load reads the YAML file at path and the .env file at envFile, then applies
// the environment. Either path may be empty to skip that source; a path that
// is given must exist.
func Load(path, envFile string) (Settings, error) {
	f := defaults()
	if path != "" {
		if err := f.readYAML(path); err != nil {
			return Settings{}, err
		}
	}

	environ := map[string]string{}
	if envFile != "" {
		dotenv, err := godotenv.Read(envFile)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "could not read env file %q", envFile)
		}
		for k, v := range dotenv {
			environ[k] = v
		}
	}
	// the process environment wins over the .env file
	for k, v := range env.ToMap(os.Environ()) {
		environ[k] = v
	}
	if err := f.applyEnv(environ); err != nil {
		return Settings{}, err
	}
	return f.settings(), nil
}

func (f *file) readYAML(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open config file")
	}
	defer fh.Close()

	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return errors.Wrapf(err, "could not parse config file %q", path)
	}
	return nil
}

func (f *file) applyEnv(environ map[string]string) error {
	err := env.ParseWithOptions(f, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
	return errors.Wrap(err, "invalid environment")
}
