package model

import "time"

// Snapshot pairs a metrics state with the geometry derived from it.
// Sequence is 0 for the seed state and increases by one per tick.
type Snapshot struct {
	Sequence uint64        `json:"sequence"`
	At       time.Time     `json:"at"`
	Metrics  MetricsState  `json:"metrics"`
	Geometry ChartGeometry `json:"geometry"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Sequence: s.Sequence,
		At:       s.At,
		Metrics:  s.Metrics.Clone(),
		Geometry: s.Geometry.Clone(),
	}
}
