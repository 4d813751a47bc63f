package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/greenhouse-iot/sensordash/internal/errors"
)

// Command-specific flags
var (
	monitorIntervalFlag string
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live sensor dashboard",
	Long: `Open an interactive dashboard of current sensor readings.

On start the dashboard loads history, then the current readings, then
refreshes on a fixed interval. Each sensor card is colored by how its value
sits against the optimal range for the crop.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Refresh now
  a           Toggle auto-refresh
  + / -       Slower / faster refresh
  Tab / m     Cycle chart metric
  up/k        Select previous sensor
  down/j      Select next sensor
  Enter       Sensor detail
  Esc         Back
  ?           Show help

Examples:
  sensordash monitor
  sensordash monitor --interval 10s`,
	Annotations: guarded(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		interval, err := ParseInterval(monitorIntervalFlag, a.Config.Refresh.Interval)
		if err != nil {
			return err
		}
		return monitorCommand(cmd.Context(), a, interval)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sensordash.

Examples:
  # Bash
  sensordash completion bash > /etc/bash_completion.d/sensordash

  # Zsh
  sensordash completion zsh > "${fpath[1]}/_sensordash"

  # Fish
  sensordash completion fish > ~/.config/fish/completions/sensordash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Completion must work without a config.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrInput,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "refresh interval (e.g., 2s, 5s, 1m; default from config)")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(completionCmd)
}
