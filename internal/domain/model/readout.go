package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LeadTarget is the lead goal, in thousands, that the lead card measures against.
const LeadTarget = 60

// Readout holds display strings for the dashboard cards.
type Readout struct {
	GrowthROI          string  `json:"growth_roi"`
	TotalLeads         string  `json:"total_leads"`
	LeadTargetProgress float64 `json:"lead_target_progress"` // 0..100
	ConversionLift     string  `json:"conversion_lift"`
	CPLReduction       string  `json:"cpl_reduction"`
	IterationVelocity  string  `json:"iteration_velocity"`
	SuccessRate        string  `json:"success_rate"`
}

// NewReadout formats a state for display.
func NewReadout(s MetricsState) Readout {
	progress, _ := decimal.NewFromFloat(s.TotalLeads).
		Div(decimal.NewFromInt(LeadTarget)).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		Float64()

	return Readout{
		GrowthROI:          strconv.Itoa(s.GrowthROI) + "%",
		TotalLeads:         tenth(s.TotalLeads) + "k",
		LeadTargetProgress: progress,
		ConversionLift:     "+" + tenth(s.ConversionLift) + "%",
		CPLReduction:       "-" + tenth(s.CPLReduction) + "%",
		IterationVelocity:  tenth(s.IterationVelocity),
		SuccessRate:        tenth(s.LastSuccessRate()) + "%",
	}
}

func tenth(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
