// Package monitor implements the live sensor dashboard.
//
// The dashboard shows one card per sensor, colored by how each reading sits
// against the crop's optimal band, and a braille chart of the selected
// metric's history. It adapts to terminal width.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View). The Model
// never fetches on its own: it drives a Source (the poller) and mirrors its
// state.
//
//   - Init attaches the poller in a command. The poller loads history, then
//     the first snapshot, then starts its own refresh timer.
//   - The poller's change callback does a non-blocking send on a one-slot
//     channel. A command waiting on that channel turns it into changedMsg,
//     on which the Model copies the poller's state and waits again.
//   - Notifications reach the Model the same way through Notifier, and are
//     shown as toasts that expire after a few seconds.
//
// Producers never call Program.Send, so a slow render cannot block the
// poller.
//
// # Layout Modes
//
//	LayoutMinimal  (<80 cols)  - Sensor cards only
//	LayoutCompact  (80-120)    - Cards and the selected metric's chart
//	LayoutWide     (120+)      - Cards, chart and a sparkline per metric
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh now
//	a           - Toggle auto-refresh
//	+ / -       - Slower / faster refresh
//	Tab, m      - Cycle chart metric
//	j/k, ↑/↓    - Navigate sensors
//	Enter       - Sensor detail view
//	Esc         - Back
//	?           - Toggle help overlay
package monitor
