package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/greenhouse-iot/sensordash/internal/errors"
)

// MinRefreshInterval is the shortest auto-refresh period accepted.
const MinRefreshInterval = 500 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensordash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sensordash to a newer release")
	}

	checks := []struct {
		section string
		fn      func() error
	}{
		{"api", func() error { return validateAPI(cfg.API) }},
		{"refresh", func() error { return validateRefresh(cfg.Refresh) }},
		{"history", func() error { return validateHistory(cfg.History) }},
		{"output", func() error { return validateOutput(cfg.Output) }},
		{"server", func() error { return validateServer(cfg.Server) }},
	}
	for _, c := range checks {
		if err := c.fn(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section in your %s.", c.section, ConfigFileName))
		}
	}
	return nil
}

func validateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty - set it to something like %s", DefaultBaseURL)
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url '%s' isn't a valid http(s) URL", api.BaseURL)
	}
	if api.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", api.Timeout)
	}
	if api.Retries < 0 {
		return fmt.Errorf("api.retries can't be negative")
	}
	if api.RetryDelay < 0 {
		return fmt.Errorf("api.retry_delay can't be negative")
	}
	return nil
}

func validateRefresh(r RefreshConfig) error {
	if r.Interval < MinRefreshInterval {
		return fmt.Errorf("refresh.interval %v is too short - use at least %v", r.Interval, MinRefreshInterval)
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	if h.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be at least 1, got %d", h.Capacity)
	}
	if h.Limit <= 0 {
		return fmt.Errorf("history.limit must be at least 1, got %d", h.Limit)
	}
	return nil
}

// validateOutput checks output configuration.
func validateOutput(out OutputConfig) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[out.Color] {
		return fmt.Errorf("output.color '%s' isn't valid - use 'auto', 'always', or 'never'", out.Color)
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is empty - try '%s'", DefaultServerAddr)
	}
	if strings.TrimSpace(s.Password) == "" {
		return fmt.Errorf("server.password is empty - set one, or use ${NAME} to read it from the environment")
	}
	if s.Simulate && s.SimulateInterval <= 0 {
		return fmt.Errorf("server.simulate_interval must be positive when simulation is on")
	}
	if s.MQTT.Broker != "" {
		u, err := url.Parse(s.MQTT.Broker)
		if err != nil || u.Host == "" {
			return fmt.Errorf("server.mqtt.broker '%s' isn't a valid broker URL - try tcp://localhost:1883", s.MQTT.Broker)
		}
		switch u.Scheme {
		case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
		default:
			return fmt.Errorf("server.mqtt.broker scheme '%s' isn't supported - use tcp, ssl, ws or wss", u.Scheme)
		}
		if s.MQTT.Topic == "" {
			return fmt.Errorf("server.mqtt.topic is empty")
		}
	}
	return nil
}
