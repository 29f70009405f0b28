package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:     "watch [TASKS]",
	Short:   "Render again whenever the task list changes",
	Long:    paragraph(fmt.Sprintf("\n%s the task list and render a new track every time it is saved.", keyword("Watch"))),
	Example: paragraph("focusbox watch tasks.yml -o session.wav"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watch(ctx, tasksArg(args), func(ctx context.Context, path string) {
			cfg, err := loadConfig()
			if err != nil {
				log.Error("invalid configuration", "err", err)
				return
			}
			sum, err := render(ctx, cfg, path, outputPath)
			if err != nil {
				log.Error("render failed", "err", err)
				return
			}
			printSummary(os.Stdout, sum)
		})
	},
}

// watch calls fn once for path and again after every change to it, until
// ctx is done.
func watch(ctx context.Context, path string, fn func(context.Context, string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("unable to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory: editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", filepath.Dir(abs), err)
	}

	fn(ctx, abs)
	log.Info("watching for changes", "path", abs)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-timer.C:
			log.Info("task list changed, rendering", "path", abs)
			fn(ctx, abs)
		}
	}
}
