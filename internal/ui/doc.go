// Package ui provides the terminal building blocks shared by the sensordash
// commands and the monitor dashboard.
//
// # Components
//
//	Spinner      - Animated status line for one-shot API calls
//	Sparkline    - Eight-level block chart of a metric series
//	Table        - Bubbles table with the dashboard palette
//	Header       - Branded title line with a divider
//
// # Colors
//
// Colors are hex values so they render well on true-color terminals and
// degrade on others. DisableColors switches to plain output for --no-color,
// and ConfigureColors applies the output.color setting from the config file.
package ui
