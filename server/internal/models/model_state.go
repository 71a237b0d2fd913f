package models

import "time"

// ModelState is the persisted reference profile.
type ModelState struct {
	Trained            bool            `json:"trained"`
	LegitimateFeatures []FeatureVector `json:"legitimateFeatures"`
}

// ClassProbabilities holds a value per class.
type ClassProbabilities struct {
	Fraudulent float64 `json:"fraudulent"`
	Legitimate float64 `json:"legitimate"`
}

// Prediction labels.
const (
	PredictionFraudulent = 0
	PredictionLegitimate = 1
)

// PredictionResult is what the classifier hands back to callers.
type PredictionResult struct {
	Prediction    int                `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities ClassProbabilities `json:"probabilities"`
	LogLikelihood ClassProbabilities `json:"logLikelihood"`
	Features      *FeatureVector     `json:"features,omitempty"`
	RiskScore     float64            `json:"riskScore"`
	RiskLevel     string             `json:"riskLevel"`
	Timestamp     time.Time          `json:"timestamp"`
}

// IsLegitimate reports whether the prediction matched the user profile.
func (p PredictionResult) IsLegitimate() bool {
	return p.Prediction == PredictionLegitimate
}

// Blob is a row of the opaque key/value store used for persistence.
type Blob struct {
	Key       string `gorm:"primaryKey;column:name;size:128"`
	Value     []byte
	UpdatedAt time.Time
}
