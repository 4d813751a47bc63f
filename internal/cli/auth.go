package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

var loginPasswordFlag string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the dashboard",
	Long: `Check the dashboard password against the API and remember the login.

Without --password you are prompted for it. The login is tied to the
configured api.base_url; pointing at another API needs a new login.

Examples:
  sensordash login
  sensordash login --password "$GREENHOUSE_PASSWORD"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		password := loginPasswordFlag
		if password == "" {
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}
		return loginCommand(cmd.Context(), a, cmd.OutOrStdout(), password)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		return logoutCommand(a, cmd.OutOrStdout())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPasswordFlag, "password", "", "dashboard password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

// promptPassword asks for the password with input hidden.
func promptPassword() (string, error) {
	if machineMode || !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New(errors.ErrInput,
			"No password given",
			"Pass --password when not running in a terminal.")
	}

	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dashboard password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrInput,
			"Failed to get user input",
			"Try again with --password.")
	}
	return password, nil
}

// loginCommand checks password and records the login on success. The
// session is left untouched on failure.
func loginCommand(ctx context.Context, a *App, w io.Writer, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New(errors.ErrInput, "No password given", "Pass --password or run in a terminal to be prompted.")
	}

	client, err := a.apiClient()
	if err != nil {
		return err
	}

	check := func() error { return client.Login(ctx, password) }
	if machineMode {
		err = check()
	} else {
		err = ui.RunWithSpinner(w, "Logging in to "+a.Config.API.BaseURL, check)
	}
	if stderrors.Is(err, api.ErrInvalidPassword) {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Invalid password",
			"Check the password the server was started with.")
	}
	if err != nil {
		return apiError(err, "log in")
	}

	st, err := a.Session.Login(a.Config.API.BaseURL)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Logged in, but couldn't save the session",
			fmt.Sprintf("Check that %s is writable.", a.Session.Path()))
	}
	a.Log.Debug("session saved to %s", a.Session.Path())

	if machineMode {
		return WriteJSONSuccess(w, map[string]any{
			"logged_in": true,
			"base_url":  st.BaseURL,
		})
	}
	fmt.Fprintf(w, "%s Logged in to %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), st.BaseURL)
	return nil
}

func logoutCommand(a *App, w io.Writer) error {
	if err := a.Session.Logout(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't clear the session",
			fmt.Sprintf("Delete %s by hand.", a.Session.Path()))
	}
	if machineMode {
		return WriteJSONSuccess(w, map[string]any{"logged_in": false})
	}
	fmt.Fprintf(w, "%s Logged out\n", ui.SuccessStyle().Render(ui.SymbolSuccess))
	return nil
}
