package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/notifd/notifd/internal/bus"
	"github.com/notifd/notifd/internal/config"
	"github.com/notifd/notifd/internal/daemon"
	"github.com/notifd/notifd/internal/fileutil"
	"github.com/notifd/notifd/internal/freedesktop"
	"github.com/notifd/notifd/internal/publisher"
	"github.com/notifd/notifd/internal/scheduler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the notifd daemon.",
	Long:  `Manage the notifd daemon.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the notifd daemon.",
	Long:  `Run the notifd daemon in the foreground until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := slog.LevelInfo
		levelStr := cfg.LogLevel
		if env := os.Getenv("NOTIFD_LOG_LEVEL"); env != "" {
			levelStr = env
		}
		if levelStr != "" {
			var l slog.Level
			if err := l.UnmarshalText([]byte(levelStr)); err == nil {
				logLevel = l
			}
		}
		slog.SetDefault(slog.New(
			tint.NewHandler(os.Stderr, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}),
		))
		slog.Info("Starting daemon...", "version", Version)

		sinkPath, err := cfg.SinkPath()
		if err != nil {
			return fmt.Errorf("failed to resolve sink path: %w", err)
		}
		policy, err := cfg.Policy()
		if err != nil {
			return err
		}

		pub := publisher.New(sinkPath)
		pub.Start()
		defer pub.Close()

		d := daemon.New(scheduler.RealClock{}, pub, policy)

		srv, err := bus.New(d, freedesktop.NewResolver(cfg.DefaultIcon), Version)
		if err != nil {
			return err
		}
		defer srv.Close()

		// The emitter must be in place before the bus name is claimed,
		// otherwise an early close could drop its signal.
		d.SetSignalEmitter(srv)
		if err := srv.Claim(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("Daemon startup successful.", "sink", pub.Path())
		return d.Run(ctx)
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the notifd daemon.",
	Long:  `Install notifd as a systemd user service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		executable, err := os.Executable()
		if err != nil {
			return err
		}

		service := fmt.Sprintf(daemonServiceTemplate, executable)
		if print, _ := cmd.Flags().GetBool("print"); print {
			fmt.Fprint(os.Stdout, service)
			fmt.Fprintln(os.Stderr, "WARNING: Service configuration printed but not installed.")
			return nil
		}
		servicePath := filepath.Join(os.Getenv("HOME"), ".config", "systemd", "user", "notifd.service")

		if err := fileutil.AtomicWriteFile(servicePath, []byte(service), 0644); err != nil {
			return err
		}

		if err := exec.Command("systemctl", "--user", "enable", "--now", "notifd.service").Run(); err != nil {
			return err
		}

		fmt.Printf("Successfully installed notifd daemon service. Configuration file created at: %s\n", servicePath)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the notifd daemon.",
	Long:  `Remove the notifd systemd user service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		servicePath := filepath.Join(os.Getenv("HOME"), ".config", "systemd", "user", "notifd.service")

		if err := exec.Command("systemctl", "--user", "disable", "--now", "notifd.service").Run(); err != nil {
			// Ignore errors, as the service may not be running
		}

		if err := os.Remove(servicePath); err != nil {
			return err
		}

		fmt.Println("Successfully uninstalled notifd daemon service.")
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Restart the notifd daemon.",
	Long:  `Restart the notifd systemd user service, picking up config changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		servicePath := filepath.Join(os.Getenv("HOME"), ".config", "systemd", "user", "notifd.service")

		// If the service file doesn't exist, do nothing.
		if _, err := os.Stat(servicePath); os.IsNotExist(err) {
			fmt.Println("Daemon service not installed, nothing to do.")
			return nil
		}

		if err := exec.Command("systemctl", "--user", "restart", "notifd.service").Run(); err != nil {
			return err
		}

		fmt.Println("Successfully reloaded notifd daemon service.")
		return nil
	},
}

const daemonServiceTemplate = `[Unit]
Description=notifd notification daemon
PartOf=graphical-session.target
After=graphical-session.target

[Service]
Type=dbus
BusName=org.freedesktop.Notifications
ExecStart=%s daemon run
Restart=on-failure

[Install]
WantedBy=graphical-session.target
`

func init() {
	runCmd.Flags().String("config", "", "Path to the config file (default: $XDG_CONFIG_HOME/notifd/notifd.toml).")
	installCmd.Flags().Bool("print", false, "Print the service configuration to stdout instead of installing it.")
	daemonCmd.AddCommand(runCmd)
	daemonCmd.AddCommand(installCmd)
	daemonCmd.AddCommand(uninstallCmd)
	daemonCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(daemonCmd)
}
