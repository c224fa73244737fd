package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhamidi/declscan/codebase"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newWatchCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Scan a directory once, then keep rescanning files as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], cachePath)
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a bbolt cache database")
	return cmd
}

func runWatch(root, cachePath string) error {
	logger := commonlog.GetLogger("declscan.watch")

	var opts []codebase.Option
	var cache *codebase.Cache
	if cachePath != "" {
		c, err := codebase.OpenCache(cachePath, root)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		cache = c
		defer cache.Close()
		opts = append(opts, codebase.WithCache(cache))
	}

	cb := codebase.New(root, opts...)
	if err := cb.ScanAll(); err != nil {
		logger.Errorf("initial scan: %s", err)
	}
	logger.Infof("watching %s (%d packages found)", root, len(cb.AllPackages()))

	w, err := codebase.NewWatcher(cb)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	w.OnError = func(path string, err error) {
		logger.Errorf("%s: %s", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
