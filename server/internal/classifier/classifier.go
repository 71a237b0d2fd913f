// Package classifier scores feature vectors against a legitimate profile and a
// fraudulent reference set with Gaussian Naive Bayes.
package classifier

import (
	"math"

	"github.com/maasir554/fingertail/server/internal/models"
)

// GaussianNB is stateless apart from where it gets its negative examples.
type GaussianNB struct {
	negatives NegativeSource
}

// New returns a classifier. A nil source falls back to synthetic negatives.
func New(negatives NegativeSource) *GaussianNB {
	if negatives == nil {
		negatives = NewSyntheticSource()
	}
	return &GaussianNB{negatives: negatives}
}

// NegativeSet returns the fraudulent reference vectors used against legitimate.
// Real sets smaller than MinNegatives are replaced by synthetic ones.
func (g *GaussianNB) NegativeSet(legitimate []models.FeatureVector) []models.FeatureVector {
	return FallbackSource{Primary: g.negatives, Fallback: NewSyntheticSource()}.Negatives(legitimate)
}

// Predict classifies x. It fails with models.ErrModelNotTrained when the
// legitimate set is empty.
func (g *GaussianNB) Predict(x models.FeatureVector, legitimate []models.FeatureVector) (models.PredictionResult, error) {
	return g.PredictWith(x, legitimate, g.NegativeSet(legitimate))
}

// PredictWith classifies x against explicit reference sets.
func (g *GaussianNB) PredictWith(x models.FeatureVector, legitimate, fraudulent []models.FeatureVector) (models.PredictionResult, error) {
	if len(legitimate) == 0 {
		return models.PredictionResult{}, models.ErrModelNotTrained
	}
	if len(fraudulent) < MinNegatives {
		fraudulent = NewSyntheticSource().Negatives(legitimate)
	}

	values := x.Values()
	llLegit := fitClass(legitimate).logLikelihood(values)
	llFraud := fitClass(fraudulent).logLikelihood(values)

	nLegit := math.Max(float64(len(legitimate)), 1)
	nFraud := math.Max(float64(len(fraudulent)), 1)
	priorLegit := nLegit / (nLegit + nFraud)
	priorFraud := 1 - priorLegit

	pFraud, pLegit := Softmax2(llFraud+math.Log(priorFraud), llLegit+math.Log(priorLegit))

	res := models.PredictionResult{
		Prediction:    models.PredictionFraudulent,
		Confidence:    pFraud,
		Probabilities: models.ClassProbabilities{Fraudulent: pFraud, Legitimate: pLegit},
		LogLikelihood: models.ClassProbabilities{Fraudulent: llFraud, Legitimate: llLegit},
	}
	if pLegit > pFraud {
		res.Prediction = models.PredictionLegitimate
		res.Confidence = pLegit
	}
	return res, nil
}
