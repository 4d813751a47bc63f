package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .sensordash.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
}

// APIConfig controls how the client talks to the sensor API.
type APIConfig struct {
	// BaseURL is the scheme and host of the API, e.g. http://localhost:5000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retries is how many times a failed request is re-issued.
	Retries int `yaml:"retries" mapstructure:"retries"`

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// RefreshConfig controls the auto-refresh timer.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// HistoryConfig controls the local history buffer.
type HistoryConfig struct {
	// Capacity is the number of samples kept per metric.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`

	// Limit is how many rows are requested from the history endpoint.
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// SessionConfig controls where the login flag is stored.
type SessionConfig struct {
	// File supports ~ and environment variable expansion.
	File string `yaml:"file" mapstructure:"file"`
}

// ServerConfig configures the development backend started by 'sensordash serve'.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// Password is required. A value of the form ${NAME} is read from the
	// environment.
	Password string `yaml:"password" mapstructure:"password"`

	// Simulate generates random in-range readings for every seeded sensor.
	Simulate         bool          `yaml:"simulate" mapstructure:"simulate"`
	SimulateInterval time.Duration `yaml:"simulate_interval" mapstructure:"simulate_interval"`

	MQTT MQTTConfig `yaml:"mqtt" mapstructure:"mqtt"`
}

// MQTTConfig configures reading ingestion from an MQTT broker.
// Ingestion is disabled when Broker is empty.
type MQTTConfig struct {
	Broker   string `yaml:"broker" mapstructure:"broker"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"` // ${NAME} reads the environment
}

// Default values.
const (
	DefaultBaseURL          = "http://localhost:5000"
	DefaultTimeout          = 10 * time.Second
	DefaultRetries          = 3
	DefaultRetryDelay       = time.Second
	DefaultRefreshInterval  = 5 * time.Second
	DefaultHistoryCapacity  = 100
	DefaultHistoryLimit     = 100
	DefaultSessionFile      = "~/.config/sensordash/session.yaml"
	DefaultServerAddr       = ":5000"
	DefaultServerPassword   = "admin123"
	DefaultSimulateInterval = 5 * time.Second
	DefaultMQTTTopic        = "greenhouse/sensors/+/data"
	DefaultMQTTClientID     = "sensordash-server"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			Timeout:    DefaultTimeout,
			Retries:    DefaultRetries,
			RetryDelay: DefaultRetryDelay,
		},
		Refresh: RefreshConfig{
			Interval: DefaultRefreshInterval,
		},
		History: HistoryConfig{
			Capacity: DefaultHistoryCapacity,
			Limit:    DefaultHistoryLimit,
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Session: SessionConfig{
			File: DefaultSessionFile,
		},
		Server: ServerConfig{
			Addr:             DefaultServerAddr,
			Password:         DefaultServerPassword,
			SimulateInterval: DefaultSimulateInterval,
			MQTT: MQTTConfig{
				Topic:    DefaultMQTTTopic,
				ClientID: DefaultMQTTClientID,
			},
		},
	}
}
