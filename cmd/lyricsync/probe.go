package main

import (
	"fmt"

	"github.com/ngrok/lyricsync"
	"github.com/ngrok/lyricsync/memhook"
	"github.com/spf13/cobra"
)

func newProbeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Read the player's lyric once and print what was found",
		Long: `probe attaches to the player, follows the configured pointer chain and ` +
			`prints the current lyric together with the playback counter. It is ` +
			`useful for checking offsets after a player update.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.load()
			if err != nil {
				return err
			}
			l, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel)
			if err != nil {
				return err
			}
			target := settings.Syncer.Target
			hook, err := memhook.NewHook(target, memhook.WithHookLogger(l))
			if err != nil {
				return err
			}
			defer hook.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "process: %s\nmodule:  %s\nchain:   %s\n", target.ProcessName, target.ModuleName, target.Chain)
			text, err := hook.CurrentLyric()
			if err != nil {
				return fmt.Errorf("%s: %w", lyricsync.KindOf(err), err)
			}
			fmt.Fprintf(out, "lyric:   %q\n", text)

			counter, err := hook.ReadCounter(memhook.PlaybackChain)
			if err != nil {
				fmt.Fprintf(out, "counter: unavailable (%s)\n", lyricsync.KindOf(err))
				return nil
			}
			fmt.Fprintf(out, "counter: %d\n", counter)
			return nil
		},
	}
}
