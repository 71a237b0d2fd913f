package services

import (
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
)

// AlertNotifier reports suspicious predictions. Delivery is a structured
// warning log; downstream collectors pick it up from there.
type AlertNotifier struct {
	log        *zap.Logger
	confidence float64
}

func NewAlertNotifier(log *zap.Logger, confidence float64) *AlertNotifier {
	return &AlertNotifier{log: log.Named("alerts"), confidence: confidence}
}

// ShouldAlert reports a fraudulent prediction at or above the confidence
// threshold, or any high risk level.
func (n *AlertNotifier) ShouldAlert(res models.PredictionResult) bool {
	if res.RiskLevel == metrics.RiskHigh {
		return true
	}
	return !res.IsLegitimate() && res.Confidence >= n.confidence
}

// Notify emits an alert for res when it qualifies and reports whether it did.
func (n *AlertNotifier) Notify(sessionID string, res models.PredictionResult) bool {
	if !n.ShouldAlert(res) {
		return false
	}
	n.log.Warn("Suspicious session",
		zap.String("session_id", sessionID),
		zap.Int("prediction", res.Prediction),
		zap.Float64("confidence", res.Confidence),
		zap.Float64("p_fraudulent", res.Probabilities.Fraudulent),
		zap.Float64("risk_score", res.RiskScore),
		zap.String("risk_level", res.RiskLevel),
	)
	return true
}
