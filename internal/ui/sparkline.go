package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// Sparkline renders the most recent width values as block characters scaled
// between the min and max of those values. A flat series renders at the
// middle level.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal
	for _, v := range data {
		level := numLevels / 2
		if valueRange > 0 {
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			level = max(0, min(level, numLevels-1))
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}
	return sb.String()
}

// RenderSparkline is Sparkline drawn in color.
func RenderSparkline(data []float64, width int, color lipgloss.Color) string {
	line := Sparkline(data, width)
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

// Trend compares the last value with the one before it: 1 for rising, -1
// for falling, 0 for flat or too little data.
func Trend(data []float64) int {
	if len(data) < 2 {
		return 0
	}
	last, prev := data[len(data)-1], data[len(data)-2]
	switch {
	case last > prev:
		return 1
	case last < prev:
		return -1
	default:
		return 0
	}
}

// TrendArrow returns an arrow for Trend(data).
func TrendArrow(data []float64) string {
	switch Trend(data) {
	case 1:
		return "↑"
	case -1:
		return "↓"
	default:
		return "→"
	}
}
