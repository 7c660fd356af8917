package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/notifd/notifd/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the published notification state.",
	Long: `Print the notification table every time the daemon publishes a new
snapshot. This is the consumption pattern a file-based renderer uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("sink")
		if path == "" {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if path, err = cfg.SinkPath(); err != nil {
				return err
			}
		}

		// The daemon replaces the sink atomically by rename, so the
		// watch goes on the directory, not the file.
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("could not watch %s: %w", filepath.Dir(path), err)
		}

		printSink(path)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Name == path && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					printSink(path)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}

func printSink(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "could not read %s: %v\n", path, err)
		}
		return
	}
	if err := printTable(data); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}

func init() {
	watchCmd.Flags().String("sink", "", "Path of the published state file (default: resolved from config).")
	rootCmd.AddCommand(watchCmd)
}
