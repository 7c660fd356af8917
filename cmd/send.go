package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/notifd/notifd/internal/notification"
)

var sendCmd = &cobra.Command{
	Use:   "send <summary> [body]",
	Short: "Send a notification to the daemon.",
	Long: `Send a notification through the regular client path, exactly as any
desktop application would.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary := args[0]
		body := ""
		if len(args) == 2 {
			body = args[1]
		}

		appName, _ := cmd.Flags().GetString("app")
		icon, _ := cmd.Flags().GetString("icon")
		urgencyStr, _ := cmd.Flags().GetString("urgency")
		timeoutMs, _ := cmd.Flags().GetInt32("timeout")
		replaces, _ := cmd.Flags().GetUint32("replaces")
		actionSpecs, _ := cmd.Flags().GetStringArray("action")
		wait, _ := cmd.Flags().GetBool("wait")

		urgency, err := notification.ParseUrgency(urgencyStr)
		if err != nil {
			return err
		}
		actions, err := parseActionSpecs(actionSpecs)
		if err != nil {
			return err
		}

		conn, _, err := serverObject()
		if err != nil {
			handleClientError(err)
		}
		defer conn.Close()

		n := notify.Notification{
			AppName:       appName,
			ReplacesID:    replaces,
			AppIcon:       icon,
			Summary:       summary,
			Body:          body,
			Actions:       actions,
			Hints:         map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(urgency))},
			ExpireTimeout: expireTimeout(timeoutMs),
		}

		if !wait {
			id, err := notify.SendNotification(conn, n)
			if err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}
			fmt.Println(id)
			return nil
		}
		return sendAndWait(cmd, conn, n)
	},
}

// sendAndWait sends the notification and blocks until the daemon reports it
// closed, printing any action the renderer invoked along the way.
func sendAndWait(cmd *cobra.Command, conn *dbus.Conn, n notify.Notification) error {
	invoked := make(chan string, 1)
	closed := make(chan uint32, 1)

	notifier, err := notify.New(conn,
		notify.WithOnAction(func(s *notify.ActionInvokedSignal) {
			select {
			case invoked <- s.ActionKey:
			default:
			}
		}),
		notify.WithOnClosed(func(s *notify.NotificationClosedSignal) {
			select {
			case closed <- uint32(s.Reason):
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notification signals: %w", err)
	}
	defer notifier.Close()

	id, err := notifier.SendNotification(n)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	fmt.Println(id)

	for {
		select {
		case key := <-invoked:
			fmt.Printf("action: %s\n", key)
		case reason := <-closed:
			fmt.Printf("closed: %s\n", notification.CloseReason(reason))
			return nil
		case <-cmd.Context().Done():
			return nil
		}
	}
}

func parseActionSpecs(specs []string) ([]notify.Action, error) {
	actions := make([]notify.Action, 0, len(specs))
	for _, spec := range specs {
		key, label, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid action %q, expected key=label", spec)
		}
		actions = append(actions, notify.Action{Key: key, Label: label})
	}
	return actions, nil
}

func expireTimeout(ms int32) time.Duration {
	switch {
	case ms < 0:
		return notify.ExpireTimeoutSetByNotificationServer
	case ms == 0:
		return notify.ExpireTimeoutNever
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

func init() {
	sendCmd.Flags().String("app", "notifd", "Application name to send as.")
	sendCmd.Flags().String("icon", "", "Icon name or path.")
	sendCmd.Flags().String("urgency", "normal", "Urgency: low, normal or critical.")
	sendCmd.Flags().Int32("timeout", -1, "Timeout in milliseconds. -1 for server default, 0 for never.")
	sendCmd.Flags().Uint32("replaces", 0, "Id of an existing notification to replace.")
	sendCmd.Flags().StringArray("action", nil, "Action as key=label. May be repeated.")
	sendCmd.Flags().Bool("wait", false, "Wait until the notification is closed, printing invoked actions.")
	rootCmd.AddCommand(sendCmd)
}
