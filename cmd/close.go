package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a notification.",
	Long:  `Ask the daemon to close a notification, as its sender would.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		conn, obj, err := serverObject()
		if err != nil {
			handleClientError(err)
		}
		defer conn.Close()

		call := obj.Call("org.freedesktop.Notifications.CloseNotification", 0, id)
		if call.Err != nil {
			return fmt.Errorf("failed to close notification: %w", call.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
