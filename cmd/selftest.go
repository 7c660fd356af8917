package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/notifd/notifd/internal/config"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Verify the daemon end to end.",
	Long: `Send a notification through the platform notification path and confirm it
appears in the published sink file within a few seconds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		sink, err := cfg.SinkPath()
		if err != nil {
			return err
		}

		marker := fmt.Sprintf("notifd selftest %d", time.Now().UnixNano())
		if err := beeep.Notify(marker, "This notification verifies the daemon is publishing state.", ""); err != nil {
			return fmt.Errorf("failed to send test notification: %w", err)
		}

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if id, ok := findSummary(sink, marker); ok {
				fmt.Printf("OK: notification %d reached the sink at %s\n", id, sink)
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
		return fmt.Errorf("test notification did not appear in %s within 5s", sink)
	},
}

func findSummary(sink, summary string) (uint64, bool) {
	data, err := os.ReadFile(sink)
	if err != nil {
		return 0, false
	}
	for _, e := range gjson.ParseBytes(data).Array() {
		if e.Get("summary").String() == summary {
			return e.Get("id").Uint(), true
		}
	}
	return 0, false
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}
