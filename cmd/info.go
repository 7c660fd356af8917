package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the running notification server.",
	Long:  `Query the running server over the bus and print what it reports about itself.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := serverObject()
		if err != nil {
			handleClientError(err)
		}
		defer conn.Close()

		var name, vendor, version, spec string
		call := obj.Call("org.freedesktop.Notifications.GetServerInformation", 0)
		if err := call.Store(&name, &vendor, &version, &spec); err != nil {
			return fmt.Errorf("failed to get server information: %w", err)
		}

		fmt.Printf("Name:         %s\n", name)
		fmt.Printf("Vendor:       %s\n", vendor)
		fmt.Printf("Version:      %s\n", version)
		fmt.Printf("Spec version: %s\n", spec)
		return nil
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List the capabilities of the running notification server.",
	Long:  `List the capabilities of the running notification server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := serverObject()
		if err != nil {
			handleClientError(err)
		}
		defer conn.Close()

		var caps []string
		call := obj.Call("org.freedesktop.Notifications.GetCapabilities", 0)
		if err := call.Store(&caps); err != nil {
			return fmt.Errorf("failed to get capabilities: %w", err)
		}

		fmt.Println(strings.Join(caps, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(capabilitiesCmd)
}
