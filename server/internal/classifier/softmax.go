package classifier

import "math"

// probabilityEpsilon keeps probabilities strictly inside (0,1).
const probabilityEpsilon = 1e-6

func clampProbability(p float64) float64 {
	return math.Min(math.Max(p, probabilityEpsilon), 1-probabilityEpsilon)
}

// Softmax2 converts two log-space scores into a probability pair. The max is
// subtracted before exponentiating.
func Softmax2(a, b float64) (float64, float64) {
	m := math.Max(a, b)
	ea := math.Exp(a - m)
	eb := math.Exp(b - m)
	sum := ea + eb
	pa, pb := ea/sum, eb/sum
	if math.IsNaN(pa) || math.IsNaN(pb) {
		return 0.5, 0.5
	}
	return clampProbability(pa), clampProbability(pb)
}
