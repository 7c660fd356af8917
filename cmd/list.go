package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/notifd/notifd/internal/config"
	"github.com/notifd/notifd/internal/markup"
	"github.com/notifd/notifd/internal/notification"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notifications.",
	Long: `Print the daemon's current notification state as read from the published
sink file. This is the same data a renderer consumes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, err := readSink(cmd)
		if err != nil {
			return err
		}

		switch output {
		case "json":
			fmt.Print(string(data))
			return nil
		case "yaml":
			return printYAML(data)
		case "table":
			return printTable(data)
		}
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	},
}

func readSink(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("sink")
	if path == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		if path, err = cfg.SinkPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no published state at %s, is the daemon running?", path)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func printYAML(data []byte) error {
	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("published state is not valid JSON: %w", err)
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func printTable(data []byte) error {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return fmt.Errorf("published state is not a JSON array")
	}
	entries := parsed.Array()
	if len(entries) == 0 {
		fmt.Println("No active notifications.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tURGENCY\tAPP\tAGE\tSUMMARY")
	for _, e := range entries {
		age := ""
		if t, err := time.Parse(time.RFC3339, e.Get("time").String()); err == nil {
			age = notification.RelativeTime(t, now)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			e.Get("id").Uint(),
			e.Get("urgency").String(),
			e.Get("name").String(),
			age,
			markup.Strip(e.Get("summary").String()))
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml.")
	listCmd.Flags().String("sink", "", "Path of the published state file (default: resolved from config).")
	rootCmd.AddCommand(listCmd)
}
