package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/request"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
	"github.com/greenhouse-iot/sensordash/internal/util"
)

// historySparkWidth is how many of the newest samples the sparkline shows.
const historySparkWidth = 40

var (
	historyLimitFlag  int
	historyMetricFlag string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded readings per metric",
	Long: `Fetch recorded history from the API and summarize each metric with a
sparkline, its range, and its latest value.

Examples:
  sensordash history
  sensordash history --metric temperature --limit 50
  sensordash history --json`,
	Args:        cobra.NoArgs,
	Annotations: guarded(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		metrics := sensor.Metrics
		if historyMetricFlag != "" {
			m, err := parseMetricFlag(historyMetricFlag)
			if err != nil {
				return err
			}
			metrics = []sensor.Metric{m}
		}
		limit := historyLimitFlag
		if limit <= 0 {
			limit = a.Config.History.Limit
		}
		return historyCommand(cmd.Context(), a, cmd.OutOrStdout(), limit, metrics)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 0, "rows of history to request (default from config)")
	historyCmd.Flags().StringVar(&historyMetricFlag, "metric", "", "only show this metric")
	rootCmd.AddCommand(historyCmd)
}

// parseMetricFlag parses --metric, suggesting the closest metric on a typo.
func parseMetricFlag(s string) (sensor.Metric, error) {
	m, err := sensor.ParseMetric(s)
	if err == nil {
		return m, nil
	}

	names := make([]string, len(sensor.Metrics))
	for i, m := range sensor.Metrics {
		names[i] = string(m)
	}
	suggestion := "Use one of: " + util.JoinOrNone(names) + "."
	if near := util.SuggestSimilar(s, names, 3); len(near) > 0 {
		suggestion = fmt.Sprintf("Did you mean '%s'?", near[0])
	}
	return "", errors.WrapWithCode(err, errors.ErrInput,
		fmt.Sprintf("'%s' is not a metric", s), suggestion)
}

func historyCommand(ctx context.Context, a *App, w io.Writer, limit int, metrics []sensor.Metric) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	snap, err := client.History(ctx, limit)
	switch {
	case request.IsNotFound(err):
		// The endpoint answers 404 until something has been recorded.
		snap = history.Empty()
	case err != nil:
		return apiError(err, "fetch history")
	}

	// Bound to the configured capacity, same as the dashboard.
	h := history.New(a.Config.History.Capacity)
	h.Replace(snap)

	if machineMode {
		out := make(history.Snapshot, len(metrics))
		for _, m := range metrics {
			out[m] = h.Series(m)
		}
		return WriteJSONSuccess(w, out)
	}

	for _, m := range metrics {
		writeMetricHistory(w, m, h.Series(m))
	}
	return nil
}

func writeMetricHistory(w io.Writer, m sensor.Metric, series []history.Sample) {
	title := ui.BoldStyle().Render(m.Label())
	if len(series) == 0 {
		fmt.Fprintf(w, "%s  %s\n", title, ui.MutedStyle().Render("no samples"))
		return
	}

	values := make([]float64, len(series))
	lo, hi := series[0].Value, series[0].Value
	for i, s := range series {
		values[i] = s.Value
		lo = min(lo, s.Value)
		hi = max(hi, s.Value)
	}
	latest := series[len(series)-1]

	fmt.Fprintf(w, "%s  %s\n", title, ui.RenderSparkline(values, historySparkWidth, ui.MetricColors[string(m)]))
	fmt.Fprintf(w, "  %s\n", ui.MutedStyle().Render(fmt.Sprintf(
		"latest %.1f%s %s  min %.1f  max %.1f  %d %s since %s",
		latest.Value, m.Unit(), ui.TrendArrow(values), lo, hi,
		len(series), util.Pluralize(len(series), "sample", "samples"), series[0].Time)))
}
