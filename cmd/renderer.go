package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// The dismiss and invoke commands exercise the renderer-facing interface.
// A renderer written in any language drives the daemon with exactly these
// two calls.

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss a notification as the renderer.",
	Long:  `Dismiss a notification on behalf of the user, as a renderer would.`,
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

		if call := obj.Call("org.notifd.Renderer.Dismiss", 0, id); call.Err != nil {
			return fmt.Errorf("failed to dismiss notification: %w", call.Err)
		}
		return nil
	},
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <id> <action-key>",
	Short: "Invoke a notification action as the renderer.",
	Long:  `Route an action key back to the notification's sender, as a renderer would.`,
	Args:  cobra.ExactArgs(2),
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

		if call := obj.Call("org.notifd.Renderer.Invoke", 0, id, args[1]); call.Err != nil {
			return fmt.Errorf("failed to invoke action: %w", call.Err)
		}
		return nil
	},
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid notification id %q", s)
	}
	return uint32(id), nil
}

func init() {
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(invokeCmd)
}
