package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory for a project config; ignored with Global
	Global         bool   // Write ~/.config/sensordash/config.yaml instead
	BaseURL        string // Pre-specified API base URL
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Write a commented .sensordash.yaml with the default settings.

Examples:
  sensordash init
  sensordash init --base-url http://greenhouse.local:5000
  sensordash init --global --force`,
	Args: cobra.NoArgs,
	// Init must work when there is no config, or a broken one.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if machineMode || !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.NonInteractive = true
		}
		_, err := Init(cmd.OutOrStdout(), opts)
		return err
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the config file",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set a dotted key in the active config file. Comments and layout are kept.

Examples:
  sensordash config set api.base_url http://greenhouse.local:5000
  sensordash config set refresh.interval 10s`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSet(cmd.OutOrStdout(), Config(), args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": a.ConfigPath})
		}
		if a.ConfigPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.MutedStyle().Render("no config file; using defaults"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.ConfigPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initOpts.Global, "global", false, "write the global config instead of ./.sensordash.yaml")
	initCmd.Flags().StringVar(&initOpts.BaseURL, "base-url", "", "sensor API base URL")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt")

	configCmd.AddCommand(configSetCmd, configPathCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

// Init writes a default config and returns its path. An empty path with a
// nil error means the user declined to overwrite.
func Init(w io.Writer, opts InitOptions) (string, error) {
	path, err := initPath(opts)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return "", errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return "", nil
		}
	}

	baseURL := opts.BaseURL
	if baseURL == "" && !opts.NonInteractive {
		baseURL = config.DefaultBaseURL
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Sensor API base URL").
					Description("Where the greenhouse API is served").
					Placeholder(config.DefaultBaseURL).
					Value(&baseURL).
					Validate(validateBaseURL),
			),
		)
		if err := form.Run(); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --base-url and --non-interactive instead.")
		}
	}
	if baseURL != "" {
		if err := validateBaseURL(baseURL); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrInput,
				fmt.Sprintf("'%s' is not a usable base URL", baseURL),
				"Use a full URL such as http://localhost:5000.")
		}
	}

	if err := config.WriteDefault(path, true); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config",
			"Check that the directory is writable.")
	}
	if baseURL != "" && baseURL != config.DefaultBaseURL {
		if err := config.SetValue(path, "api.base_url", baseURL); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to set api.base_url",
				fmt.Sprintf("Edit %s by hand.", path))
		}
	}

	if machineMode {
		return path, WriteJSONSuccess(w, map[string]string{"path": path})
	}
	fmt.Fprintf(w, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	fmt.Fprintln(w, ui.MutedStyle().Render("Next: 'sensordash login', then 'sensordash monitor'."))
	return path, nil
}

func initPath(opts InitOptions) (string, error) {
	if opts.Global {
		p, err := config.GlobalConfigPath()
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot find your home directory",
				"Use 'sensordash init' inside a project instead.")
		}
		return p, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, config.ConfigFileName), nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("want an http or https URL with a host")
	}
	return nil
}

// configSet writes key=value into the config file found from explicit and
// checks the result still validates.
func configSet(w io.Writer, explicit, key, value string) error {
	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'sensordash init' first.")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to set %s", key),
			"Keys are dotted paths such as api.base_url.")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(w, map[string]string{"path": path, "key": key, "value": value})
	}
	fmt.Fprintf(w, "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value)
	return nil
}
