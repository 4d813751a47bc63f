package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/notify"
	"github.com/greenhouse-iot/sensordash/internal/request"
	"github.com/greenhouse-iot/sensordash/internal/session"
)

// App is what every command works from: the resolved config and the
// session store it points at.
type App struct {
	Config     *config.Config
	ConfigPath string
	Session    *session.Store
	Log        logger.Logger
}

// currentApp is set by the root command before any subcommand runs.
var currentApp *App

// loadApp resolves and validates the config. A missing config file is not
// an error: defaults and environment overrides apply.
func loadApp(explicit string) (*App, error) {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return newApp(cfg, path), nil
}

func newApp(cfg *config.Config, path string) *App {
	return &App{
		Config:     cfg,
		ConfigPath: path,
		Session:    session.NewStore(cfg.Session.File),
		Log:        logger.NewEnvLogger("[sensordash]"),
	}
}

// app returns the loaded App, loading it on first use for callers that run
// outside the root command.
func app() (*App, error) {
	if currentApp != nil {
		return currentApp, nil
	}
	a, err := loadApp(cfgFile)
	if err != nil {
		return nil, err
	}
	currentApp = a
	return a, nil
}

// requireLogin fails unless the session holds a login for the configured API.
func (a *App) requireLogin() error {
	st, err := a.Session.Load()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Couldn't read the login session",
			fmt.Sprintf("Delete %s and run 'sensordash login' again.", a.Session.Path()))
	}
	if st.ValidFor(a.Config.API.BaseURL) {
		return nil
	}
	if st.LoggedIn {
		return errors.New(errors.ErrAuth,
			fmt.Sprintf("Logged in to %s, not %s", st.BaseURL, a.Config.API.BaseURL),
			"Run 'sensordash login' to log in to the configured API.")
	}
	return errors.New(errors.ErrAuth,
		"Not logged in",
		"Run 'sensordash login' first.")
}

// requestClient builds an HTTP client from the api section.
func (a *App) requestClient(n notify.Notifier, l logger.Logger) (*request.Client, error) {
	return request.New(a.Config.API.BaseURL,
		request.WithTimeout(a.Config.API.Timeout),
		request.WithRetries(a.Config.API.Retries),
		request.WithRetryDelay(a.Config.API.RetryDelay),
		request.WithNotifier(n),
		request.WithLogger(l),
	)
}

// apiClient builds a typed API client for one-shot commands. Failures come
// back as errors, so notifications are dropped.
func (a *App) apiClient() (*api.Client, error) {
	rc, err := a.requestClient(notify.Discard(), a.Log)
	if err != nil {
		return nil, err
	}
	return api.New(rc), nil
}

// apiError wraps a failed API call with a suggestion that fits its cause.
func apiError(err error, action string) error {
	switch {
	case request.IsNotFound(err):
		return errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Failed to %s: not found", action),
			"Check the ID with 'sensordash sensors list'.")
	case request.StatusCode(err) == http.StatusBadRequest:
		return errors.WrapWithCode(err, errors.ErrInput,
			fmt.Sprintf("Failed to %s: %s", action, serverText(err)),
			"Check the values you passed.")
	case request.StatusCode(err) == http.StatusUnauthorized:
		return errors.WrapWithCode(err, errors.ErrAuth,
			fmt.Sprintf("Failed to %s: unauthorized", action),
			"Run 'sensordash login' again.")
	default:
		return errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Failed to %s", action),
			"Check that the API is running and api.base_url is right. 'sensordash serve' starts a local one.")
	}
}

// serverText returns the error text from a failed response's envelope, or a
// generic description of the failure.
func serverText(err error) string {
	var se *request.StatusError
	if stderrors.As(err, &se) {
		var env api.Envelope
		if json.Unmarshal([]byte(se.Body), &env) == nil && env.Text() != "" {
			return env.Text()
		}
	}
	return request.Message(err)
}
