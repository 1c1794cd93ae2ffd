package main

import (
	"io"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/lyricsync/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	iface      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "lyricsync",
		Short: "Share the player's desktop lyric over LAN multicast",
		Long: `lyricsync reads the line shown by the player's desktop lyric window and ` +
			`multicasts it to every slave on the local network. Exactly one master ` +
			`may run per host.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&flags.envFile, "env-file", "", "file of LYRICSYNC_* variables to load")
	pf.StringVar(&flags.logLevel, "log-level", "", "one of debug, info, warn, error, crit (default from config, else info)")
	pf.StringVar(&flags.iface, "interface", "", "network interface for multicast")

	root.AddCommand(newMasterCmd(flags), newSlaveCmd(flags), newProbeCmd(flags))
	return root
}

// load reads the configuration and applies command line overrides.
func (f *globalFlags) load() (config.Settings, error) {
	s, err := config.Load(f.configPath, f.envFile)
	if err != nil {
		return config.Settings{}, err
	}
	if f.logLevel != "" {
		s.LogLevel = f.logLevel
	}
	if f.iface != "" {
		s.Syncer.Network.Interface = f.iface
	}
	return s, nil
}

func newLogger(w io.Writer, level string) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	l := log15.New()
	l.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, log15.LogfmtFormat())))
	return l, nil
}
