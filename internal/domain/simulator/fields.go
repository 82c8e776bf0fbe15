package simulator

// Field names one simulated quantity. The names double as configuration keys.
type Field string

// Simulated fields.
const (
	FieldGrowthROI         Field = "growth_roi"
	FieldTotalLeads        Field = "total_leads"
	FieldConversionLift    Field = "conversion_lift"
	FieldCPLReduction      Field = "cpl_reduction"
	FieldIterationVelocity Field = "iteration_velocity"
	FieldChartData         Field = "chart_data"
	FieldSuccessRate       Field = "success_rate"
)

// Fields lists every field in the order the tick draws random numbers for them.
var Fields = []Field{ //nolint:gochecknoglobals // read-only table
	FieldSuccessRate,
	FieldGrowthROI,
	FieldTotalLeads,
	FieldConversionLift,
	FieldCPLReduction,
	FieldIterationVelocity,
	FieldChartData,
}

// FieldSpec bounds a field to [Min, Max] and limits a single step to ±Range.
type FieldSpec struct {
	Min   float64
	Max   float64
	Range float64
}

// Valid reports whether the spec describes a non-empty interval and a non-negative step.
func (f FieldSpec) Valid() bool {
	return f.Min <= f.Max && f.Range >= 0
}

// Contains reports whether v lies in the closed interval.
func (f FieldSpec) Contains(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// DefaultSpecs returns the reference bounds and step sizes.
func DefaultSpecs() map[Field]FieldSpec {
	return map[Field]FieldSpec{
		FieldGrowthROI:         {Min: 280, Max: 340, Range: 2},
		FieldTotalLeads:        {Min: 48, Max: 58, Range: 0.04},
		FieldConversionLift:    {Min: 22, Max: 32, Range: 0.15},
		FieldCPLReduction:      {Min: 38, Max: 48, Range: 0.2},
		FieldIterationVelocity: {Min: 4, Max: 5.8, Range: 0.04},
		FieldChartData:         {Min: 0.2, Max: 1.0, Range: 0.06},
		FieldSuccessRate:       {Min: 65, Max: 98, Range: 2.5},
	}
}
