package scheduler

// Weights is the versioned scoring policy applied by the objective
// function. All weights must be non-negative.
type Weights struct {
	Version             string
	PreferenceMatch     float64
	CoachLoadBalance    float64
	CapacityUtilization float64
	RecoveryTime        float64
	TimeContinuity      float64
}

// DefaultWeights returns the v1 scoring policy.
func DefaultWeights() Weights {
	return Weights{
		Version:             "v1",
		PreferenceMatch:     10,
		CoachLoadBalance:    5,
		CapacityUtilization: 3,
		RecoveryTime:        8,
		TimeContinuity:      2,
	}
}

// Valid reports whether every weight is non-negative.
func (w Weights) Valid() bool {
	return w.PreferenceMatch >= 0 &&
		w.CoachLoadBalance >= 0 &&
		w.CapacityUtilization >= 0 &&
		w.RecoveryTime >= 0 &&
		w.TimeContinuity >= 0
}
