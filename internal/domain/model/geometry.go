package model

// Point is a coordinate inside the chart viewport. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartGeometry is the projected shape of the success-rate history.
type ChartGeometry struct {
	// LinePath is the polyline through every projected sample.
	LinePath []Point `json:"line_path"`
	// AreaPath is LinePath closed against the bottom edge of the viewport.
	AreaPath []Point `json:"area_path"`
	// LastPoint is the final point of LinePath, or the origin when empty.
	LastPoint Point `json:"last_point"`
}

// IsEmpty reports whether the geometry is the degenerate (too-short input) shape.
func (g ChartGeometry) IsEmpty() bool {
	return len(g.LinePath) == 0
}

// Clone returns a deep copy of g.
func (g ChartGeometry) Clone() ChartGeometry {
	out := g
	if g.LinePath != nil {
		out.LinePath = append([]Point(nil), g.LinePath...)
	}
	if g.AreaPath != nil {
		out.AreaPath = append([]Point(nil), g.AreaPath...)
	}
	return out
}
