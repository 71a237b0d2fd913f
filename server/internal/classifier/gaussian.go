package classifier

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/maasir554/fingertail/server/internal/models"
)

const (
	// impossibleLogLikelihood stands in for the likelihood of an empty class.
	impossibleLogLikelihood = -1e10
	// nonFiniteTermPenalty replaces a per-feature term that is NaN or infinite.
	nonFiniteTermPenalty = -10.0

	varianceFloor         = 1e-4
	varianceFloorRelative = 1e-4
)

// classModel is the per-feature Gaussian fit of one class.
type classModel struct {
	means     []float64
	variances []float64
	size      int
}

func fitClass(members []models.FeatureVector) classModel {
	m := classModel{
		means:     make([]float64, models.FeatureCount),
		variances: make([]float64, models.FeatureCount),
		size:      len(members),
	}
	if len(members) == 0 {
		return m
	}

	rows := make([][]float64, len(members))
	for i, fv := range members {
		rows[i] = fv.Values()
	}
	column := make([]float64, len(members))
	for f := 0; f < models.FeatureCount; f++ {
		for i := range rows {
			column[i] = rows[i][f]
		}
		mean, variance := stat.PopMeanVariance(column, nil)
		floor := varianceFloor + varianceFloorRelative*math.Abs(mean)
		if math.IsNaN(variance) || variance < floor {
			variance = floor
		}
		m.means[f] = mean
		m.variances[f] = variance
	}
	return m
}

// logLikelihood sums the independent per-feature Gaussian log densities of x.
func (m classModel) logLikelihood(x []float64) float64 {
	if m.size == 0 {
		return impossibleLogLikelihood
	}
	total := 0.0
	for f, v := range x {
		variance := m.variances[f]
		d := v - m.means[f]
		term := -0.5*math.Log(2*math.Pi*variance) - (d*d)/(2*variance)
		if math.IsNaN(term) || math.IsInf(term, 0) {
			term = nonFiniteTermPenalty
		}
		total += term
	}
	return total
}

// LogLikelihood is the Gaussian log-likelihood of x under a model fitted to
// members.
func LogLikelihood(x models.FeatureVector, members []models.FeatureVector) float64 {
	return fitClass(members).logLikelihood(x.Values())
}
