package cli

import (
	"context"
	stderrors "errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/monitor"
	"github.com/greenhouse-iot/sensordash/internal/poller"
)

// newPoller wires a poller to the configured API. Notifications go to n.
func newPoller(a *App, n *monitor.Notifier, log logger.Logger, interval time.Duration) (*poller.Poller, error) {
	rc, err := a.requestClient(n, log)
	if err != nil {
		return nil, err
	}
	return poller.New(api.New(rc),
		poller.WithNotifier(n),
		poller.WithLogger(log),
		poller.WithInterval(interval),
		poller.WithHistoryLimit(a.Config.History.Limit),
		poller.WithHistoryCapacity(a.Config.History.Capacity),
	), nil
}

// monitorCommand starts the TUI dashboard.
func monitorCommand(ctx context.Context, a *App, interval time.Duration) error {
	// Log lines would tear the alternate screen; the dashboard reports
	// through toasts instead.
	log := logger.Noop()
	n := monitor.NewNotifier()

	p, err := newPoller(a, n, log, interval)
	if err != nil {
		return err
	}

	model := monitor.NewModel(ctx, p, n)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()

	// Stop the timer and drop anything still in flight.
	p.Detach()

	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
