// Package model contains domain models passed between layers.
package model

// MetricsState is one immutable sample of the simulated dashboard metrics.
// Each tick produces a new value; nothing mutates a published state.
type MetricsState struct {
	GrowthROI          int       `json:"growth_roi"`           // percent, integer
	TotalLeads         float64   `json:"total_leads"`          // thousands, one decimal
	ConversionLift     float64   `json:"conversion_lift"`      // percent, one decimal
	CPLReduction       float64   `json:"cpl_reduction"`        // percent, one decimal
	IterationVelocity  float64   `json:"iteration_velocity"`   // experiments per week, one decimal
	ChartData          []float64 `json:"chart_data"`           // bar heights, full precision
	SuccessRateHistory []float64 `json:"success_rate_history"` // sliding window, oldest first
}

// Clone returns a deep copy so the caller owns its slices.
func (s MetricsState) Clone() MetricsState {
	out := s
	out.ChartData = cloneFloats(s.ChartData)
	out.SuccessRateHistory = cloneFloats(s.SuccessRateHistory)
	return out
}

// LastSuccessRate returns the newest success-rate sample, or 0 for an empty window.
func (s MetricsState) LastSuccessRate() float64 {
	if len(s.SuccessRateHistory) == 0 {
		return 0
	}
	return s.SuccessRateHistory[len(s.SuccessRateHistory)-1]
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
