package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version is the server version reported over GetServerInformation.
const Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "notifd",
	Short: "A freedesktop notification daemon with a file-based renderer interface.",
	Long: `notifd owns org.freedesktop.Notifications on the session bus, tracks the
set of active notifications, expires them on schedule, and mirrors the
current state into a JSON file for an external renderer to display.`,
	Version: Version,
}

func Execute() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(Version)); err != nil {
		os.Exit(1)
	}
}
