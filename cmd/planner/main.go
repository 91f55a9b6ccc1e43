// Command planner is the terminal client for the planning dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/planboard/internal/config"
	"github.com/mmynk/planboard/pkg/logging"
)

var (
	flagServer  string
	flagPath    string
	flagVerbose bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:           "planner",
	Short:         "Event planning dashboard client",
	Long:          "Plan vendors, budget, guests and ideas against a shared planboard server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagServer != "" {
			cfg.Client.ServerURL = flagServer
		}
		if flagPath != "" {
			cfg.Client.Path = flagPath
		}
		if flagVerbose {
			cfg.Log.Level = "debug"
		}
		closeLog := logging.SetupWithOptions(logging.Options{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		cobra.OnFinalize(func() { _ = closeLog() })
		return nil
	},
	RunE: runShow,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "", "Document path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
