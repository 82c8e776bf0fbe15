package ui

import (
	"math"
	"strings"

	"github.com/okian/demandgen/internal/domain/model"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders projected points as one row of block characters. Points
// use viewport coordinates, so y = 0 is the top and y = height the bottom.
// The points are resampled to width columns.
func Sparkline(points []model.Point, height float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(points) == 0 || height <= 0 {
		return strings.Repeat(string(blocks[0]), width)
	}

	var b strings.Builder
	top := len(blocks) - 1
	for col := 0; col < width; col++ {
		idx := 0
		if width > 1 {
			idx = int(math.Round(float64(col) * float64(len(points)-1) / float64(width-1)))
		}
		level := (height - points[idx].Y) / height * float64(top)
		b.WriteRune(blocks[int(math.Round(math.Max(0, math.Min(float64(top), level))))])
	}
	return b.String()
}

// ProgressBar renders pct (0..100) as a filled bar of width cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(math.Max(0, math.Min(100, pct)) / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Bars renders heights in [0, 1] as block characters, one per bar.
func Bars(heights []float64) string {
	var b strings.Builder
	top := len(blocks) - 1
	for _, h := range heights {
		level := math.Round(math.Max(0, math.Min(1, h)) * float64(top))
		b.WriteRune(blocks[int(level)])
		b.WriteByte(' ')
	}
	return strings.TrimRight(b.String(), " ")
}
