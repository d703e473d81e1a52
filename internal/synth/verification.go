package synth

// Agreement compares server verdicts with whether a burst was injected.
// The placeholder model is untrained so agreement is informational only.
type Agreement struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
	Errors        int
}

// Verify tallies outcomes against the injected bursts.
func Verify(outcomes []Outcome) Agreement {
	var a Agreement
	for _, o := range outcomes {
		switch {
		case o.Err != "" || o.Status != StatusOK:
			a.Errors++
		case o.Burst && o.Seizure:
			a.TruePositive++
		case o.Burst:
			a.FalseNegative++
		case o.Seizure:
			a.FalsePositive++
		default:
			a.TrueNegative++
		}
	}
	return a
}

// Accuracy is the share of answered recordings whose verdict matched the burst.
func (a Agreement) Accuracy() float64 {
	n := a.TruePositive + a.FalsePositive + a.TrueNegative + a.FalseNegative
	if n == 0 {
		return 0
	}
	return float64(a.TruePositive+a.TrueNegative) / float64(n)
}
