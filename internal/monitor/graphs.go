package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
const brailleBase = '⠀'

// brailleDots maps [row][col] to the bit offset within a braille rune.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// findMinMax returns the range of data, widened to a unit span around a
// flat series so that it still plots mid-height.
func findMinMax(data []float64) (minVal, maxVal float64) {
	if len(data) == 0 {
		return 0, 1
	}
	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if minVal == maxVal {
		return minVal - 0.5, maxVal + 0.5
	}
	return minVal, maxVal
}

func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// RenderBrailleGraph plots data as a filled area chart width characters
// wide and height rows tall. Each character holds two data points, so the
// newest 2*width points are shown, right-aligned.
func RenderBrailleGraph(data []float64, width, height int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	targetPoints := width * 2
	points := data
	if len(points) > targetPoints {
		points = resampleData(points, targetPoints)
	}
	minVal, maxVal := findMinMax(points)
	totalDots := height * 4

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	offset := max(targetPoints-len(points), 0)
	for i, val := range points {
		dotHeight := int(normalizeValue(val, minVal, maxVal) * float64(totalDots))
		dotHeight = max(1, min(dotHeight, totalDots))

		charCol := (i + offset) / 2
		subCol := (i + offset) % 2
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - dot/4
			subRow := 3 - dot%4
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

// resampleData resamples data to targetSize. Downsampling keeps the max of
// each bucket to preserve spikes; upsampling interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := min(int(float64(i+1)*bucketSize), len(data))
			if start >= end {
				start = end - 1
			}
			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				maxVal = max(maxVal, data[j])
			}
			result[i] = maxVal
		}
		return result
	}

	if targetSize == 1 {
		result[0] = data[len(data)-1]
		return result
	}
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
