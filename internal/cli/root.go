package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// annotationRequiresAuth marks commands that need a stored login.
const annotationRequiresAuth = "requiresAuth"

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "sensordash",
	Short: "Greenhouse sensor dashboard",
	Long: `sensordash watches a greenhouse sensor API from the terminal.

It polls current readings, keeps a bounded history per metric, and shows
both in a live dashboard. It can also manage sensors, print history, and
run a development API backend with MQTT ingestion and a reading simulator.

Get started:
  sensordash init      Create a .sensordash.yaml
  sensordash serve     Start the development backend
  sensordash login     Log in to the dashboard
  sensordash monitor   Open the live dashboard`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .sensordash.yaml, then ~/.config/sensordash/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// persistentPreRun runs before every command: it applies output flags,
// loads the config and enforces the login guard.
func persistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if noColor || machineMode {
		ui.DisableColors()
	}

	app, err := loadApp(cfgFile)
	if err != nil {
		return err
	}
	if !noColor && !machineMode {
		ui.ConfigureColors(app.Config.Output.Color)
	}
	currentApp = app

	if requiresAuth(cmd) {
		return app.requireLogin()
	}
	return nil
}

// requiresAuth reports whether cmd or one of its parents is guarded.
func requiresAuth(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationRequiresAuth] == "true" {
			return true
		}
	}
	return false
}

// guarded is the annotation set for commands behind the login guard.
func guarded() map[string]string {
	return map[string]string{annotationRequiresAuth: "true"}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
