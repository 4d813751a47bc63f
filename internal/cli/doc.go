// Package cli implements the sensordash command-line interface.
//
// Each Cobra command resolves the shared App (config, session store,
// logger) and delegates to a command function that takes its output writer
// explicitly, so commands are testable against an in-process API.
//
// # Command Structure
//
//	sensordash init             - Create .sensordash.yaml
//	sensordash config set|path  - Edit or locate the config
//	sensordash login / logout   - Manage the dashboard login
//	sensordash monitor          - Live TUI dashboard
//	sensordash sensors ...      - List, get, add, update, delete sensors
//	sensordash history          - Per-metric history summary
//	sensordash serve            - Development API with MQTT and simulator
//	sensordash version          - Build information
//
// # Login Guard
//
// Commands annotated with guarded() refuse to run until 'sensordash login'
// has recorded a login for the configured api.base_url. The guard is
// checked once in the root command's PersistentPreRunE.
//
// # Output
//
// Global flags (--config, --verbose, --no-color, --json) live on the root
// command. With --json every command writes a JSONEnvelope to stdout,
// failures included, and human decorations are suppressed.
package cli
