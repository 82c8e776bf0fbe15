// Package geometry maps a numeric series onto chart path geometry.
//
// Projection is a plain affine map: sample i of n lands at
// x = i/(n-1) * width and y = height - (v-min)/(max-min) * height, so larger
// values sit higher in the viewport. Values outside [min, max] are not
// clamped and land outside the viewport.
package geometry

import (
	"github.com/okian/demandgen/internal/domain/model"
)

// minSamples is the shortest series that produces a line.
const minSamples = 2

// Domain is the value range mapped onto the viewport height.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Viewport is the normalized drawing rectangle.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Default chart configuration.
var (
	DefaultDomain   = Domain{Min: 50, Max: 100}       //nolint:gochecknoglobals // value type
	DefaultViewport = Viewport{Width: 100, Height: 50} //nolint:gochecknoglobals // value type
)

// Project maps history onto the viewport. Fewer than two samples yield empty
// paths and an origin LastPoint. If domainMax equals domainMin every sample
// maps to the bottom edge.
func Project(history []float64, domainMin, domainMax, width, height float64) model.ChartGeometry {
	n := len(history)
	if n < minSamples {
		return model.ChartGeometry{LinePath: []model.Point{}, AreaPath: []model.Point{}}
	}

	span := domainMax - domainMin
	line := make([]model.Point, n)
	for i, v := range history {
		y := height
		if span != 0 {
			y = height - (v-domainMin)/span*height
		}
		line[i] = model.Point{
			X: float64(i) / float64(n-1) * width,
			Y: y,
		}
	}

	area := make([]model.Point, n, n+2)
	copy(area, line)
	area = append(area,
		model.Point{X: width, Y: height},
		model.Point{X: 0, Y: height},
	)

	return model.ChartGeometry{
		LinePath:  line,
		AreaPath:  area,
		LastPoint: line[n-1],
	}
}
