package streamcheck

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/demandgen/internal/adapters/http/api"
	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/simulator"
)

// roundingSlack covers a step that is rounded to one decimal after drifting.
const roundingSlack = 0.05 + 1e-9

// Verifier checks frames one at a time against the invariants of a single
// stream. It is not safe for concurrent use.
type Verifier struct {
	specs     map[simulator.Field]simulator.FieldSpec
	projector *geometry.Projector

	window   int
	chart    int
	validate *simulator.Simulator
	prev     *api.SnapshotView
}

// NewVerifier creates a verifier for frames projected with d and v.
func NewVerifier(specs map[simulator.Field]simulator.FieldSpec, d geometry.Domain, v geometry.Viewport) *Verifier {
	if specs == nil {
		specs = simulator.DefaultSpecs()
	}
	return &Verifier{
		specs:     specs,
		projector: geometry.NewProjector(geometry.WithDomain(d), geometry.WithViewport(v)),
	}
}

// Check verifies f and remembers it as the predecessor of the next frame.
// It returns every violated invariant; an empty result means f is valid.
func (v *Verifier) Check(f api.SnapshotView) []error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("seq %d: "+format, append([]any{f.Sequence}, args...)...))
	}

	// Lengths are fixed by the first frame.
	if v.prev == nil {
		v.window = len(f.Metrics.SuccessRateHistory)
		v.chart = len(f.Metrics.ChartData)
		v.validate = v.validator()
	}
	if n := len(f.Metrics.SuccessRateHistory); n != v.window {
		report("history length %d, want %d", n, v.window)
	}
	if n := len(f.Metrics.ChartData); n != v.chart {
		report("chart length %d, want %d", n, v.chart)
	}

	if err := v.validate.Validate(f.Metrics); err != nil {
		report("%v", err)
	}

	want := v.projector.Project(f.Metrics.SuccessRateHistory)
	if !slices.Equal(want.LinePath, f.Geometry.LinePath) ||
		!slices.Equal(want.AreaPath, f.Geometry.AreaPath) ||
		want.LastPoint != f.Geometry.LastPoint {
		report("geometry differs from local projection")
	}
	if got := geometry.PathData(f.Geometry.LinePath); got != f.LinePathData {
		report("line path data %q does not match geometry", f.LinePathData)
	}

	if v.prev != nil {
		problems = append(problems, v.checkTransition(*v.prev, f)...)
	}

	cur := f
	v.prev = &cur
	return problems
}

func (v *Verifier) checkTransition(prev, cur api.SnapshotView) []error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("seq %d: "+format, append([]any{cur.Sequence}, args...)...))
	}

	if cur.Sequence <= prev.Sequence {
		report("sequence not increasing after %d", prev.Sequence)
		return problems
	}
	if cur.Sequence != prev.Sequence+1 {
		return problems
	}

	ph, ch := prev.Metrics.SuccessRateHistory, cur.Metrics.SuccessRateHistory
	if len(ph) == len(ch) && len(ch) > 0 {
		if !slices.Equal(ch[:len(ch)-1], ph[1:]) {
			report("history did not shift by one sample")
		}
		if d := math.Abs(ch[len(ch)-1] - ph[len(ph)-1]); d > v.specs[simulator.FieldSuccessRate].Range+roundingSlack {
			report("success rate moved %.3f in one tick", d)
		}
	}

	scalars := []struct {
		field      simulator.Field
		prev, cur  float64
		extraSlack float64
	}{
		{simulator.FieldGrowthROI, float64(prev.Metrics.GrowthROI), float64(cur.Metrics.GrowthROI), 1},
		{simulator.FieldTotalLeads, prev.Metrics.TotalLeads, cur.Metrics.TotalLeads, roundingSlack},
		{simulator.FieldConversionLift, prev.Metrics.ConversionLift, cur.Metrics.ConversionLift, roundingSlack},
		{simulator.FieldCPLReduction, prev.Metrics.CPLReduction, cur.Metrics.CPLReduction, roundingSlack},
		{simulator.FieldIterationVelocity, prev.Metrics.IterationVelocity, cur.Metrics.IterationVelocity, roundingSlack},
	}
	for _, s := range scalars {
		if d := math.Abs(s.cur - s.prev); d > v.specs[s.field].Range+s.extraSlack {
			report("%s moved %.3f in one tick", s.field, d)
		}
	}

	if len(prev.Metrics.ChartData) == len(cur.Metrics.ChartData) {
		limit := v.specs[simulator.FieldChartData].Range + 1e-9
		for i := range cur.Metrics.ChartData {
			if d := math.Abs(cur.Metrics.ChartData[i] - prev.Metrics.ChartData[i]); d > limit {
				report("chart bar %d moved %.3f in one tick", i, d)
			}
		}
	}
	return problems
}

func (v *Verifier) validator() *simulator.Simulator {
	opts := []simulator.Option{
		simulator.WithWindow(v.window),
		simulator.WithChartPoints(v.chart),
	}
	for field, spec := range v.specs {
		opts = append(opts, simulator.WithFieldSpec(field, spec))
	}
	return simulator.New(opts...)
}
