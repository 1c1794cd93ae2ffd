package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ngrok/lyricsync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/sync/errgroup"
)

func newMasterCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "master",
		Short: "Read lyrics from the local player and publish them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncer(cmd, flags, lyricsync.RoleMaster)
		},
	}
}

func newSlaveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "slave",
		Short: "Show lyrics published by the master",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncer(cmd, flags, lyricsync.RoleSlave)
		},
	}
}

func runSyncer(cmd *cobra.Command, flags *globalFlags, role lyricsync.Role) error {
	settings, err := flags.load()
	if err != nil {
		return err
	}
	l, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disp := newConsoleDisplay(cmd.OutOrStdout())
	s, err := lyricsync.New(ctx, settings.Syncer, role,
		lyricsync.WithLogger(l),
		lyricsync.WithOnLyricChanged(disp.Show),
	)
	if err != nil {
		l.Error("could not start", "kind", lyricsync.KindOf(err), "err", err)
		return err
	}
	atexit.Register(func() {
		s.Close()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return disp.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down")
		return s.Close()
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}
