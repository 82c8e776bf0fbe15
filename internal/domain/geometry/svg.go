package geometry

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/demandgen/internal/domain/model"
)

// PathData renders points as SVG path data: "M x,y L x,y ...".
func PathData(points []model.Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(',')
		b.WriteString(formatCoord(p.Y))
	}
	return b.String()
}

// AreaPathData renders the closed fill path of g, or "" when g is empty.
func AreaPathData(g model.ChartGeometry) string {
	if len(g.AreaPath) == 0 {
		return ""
	}
	return PathData(g.AreaPath) + " Z"
}

// RenderSVG writes a standalone SVG document drawing the area, the line and a
// marker on the last point.
func RenderSVG(w io.Writer, g model.ChartGeometry, v Viewport) error {
	_, err := fmt.Fprintf(w, svgTemplate,
		formatCoord(v.Width), formatCoord(v.Height),
		AreaPathData(g),
		PathData(g.LinePath),
		formatCoord(g.LastPoint.X), formatCoord(g.LastPoint.Y),
	)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" preserveAspectRatio="none">
  <defs>
    <linearGradient id="area" x1="0" y1="0" x2="0" y2="1">
      <stop offset="0%%" stop-color="#3b82f6" stop-opacity="0.2"/>
      <stop offset="100%%" stop-color="#3b82f6" stop-opacity="0"/>
    </linearGradient>
  </defs>
  <path d="%s" fill="url(#area)"/>
  <path d="%s" fill="none" stroke="#3b82f6" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"/>
  <circle cx="%s" cy="%s" r="1.5" fill="#3b82f6"/>
</svg>
`
