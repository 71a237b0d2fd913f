package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/maasir554/fingertail/server/internal/models"
)

// Heuristic thresholds for the real-time risk score.
const (
	slowTypingIntervalMs   = 5000.0
	irregularTrajectoryPx  = 100.0
	correctionHeavyRate    = 0.25
	DefaultMinKeystrokes   = 10
	lowRiskCeiling         = 0.3
	mediumRiskCeiling      = 0.7
	maxRelativeDeviation   = 1.0
	deviationIndicatorTrip = 0.5
)

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskAssessment is the outcome of the cheap, classifier-independent risk
// heuristic.
type RiskAssessment struct {
	Score      float64         `json:"riskScore"`
	Level      string          `json:"riskLevel"`
	Indicators map[string]bool `json:"riskIndicators"`
	Deviation  float64         `json:"baselineDeviation"`
	Baseline   bool            `json:"baselineUsed"`
}

// RiskLevel buckets a score in [0,1].
func RiskLevel(score float64) string {
	switch {
	case score < lowRiskCeiling:
		return RiskLow
	case score < mediumRiskCeiling:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// deviationFeatures are compared against the profile mean.
var deviationFeatures = []string{"dwell_avg", "flight_avg", "PP_avg", "RR_avg"}

// baselineDeviation is the mean relative distance of the timing averages from
// the profile mean, each capped at 1.
func baselineDeviation(fv models.FeatureVector, baseline []models.FeatureVector) float64 {
	if len(baseline) == 0 {
		return 0
	}
	current := fv.Map()
	column := make([]float64, len(baseline))
	total := 0.0
	for _, name := range deviationFeatures {
		idx := models.FeatureIndex(name)
		for i, b := range baseline {
			column[i] = b.Values()[idx]
		}
		mean := stat.Mean(column, nil)
		d := math.Abs(current[name]-mean) / math.Max(math.Abs(mean), 1)
		total += math.Min(d, maxRelativeDeviation)
	}
	return total / float64(len(deviationFeatures))
}

// AssessRisk scores a session without the classifier, so it is usable before
// a profile is trained. baseline may be empty.
func AssessRisk(session models.BehavioralSession, baseline []models.FeatureVector, minKeystrokes int) RiskAssessment {
	return AssessExtraction(Describe(session), baseline, minKeystrokes)
}

// AssessExtraction is AssessRisk for a session that was already extracted.
func AssessExtraction(ex Extraction, baseline []models.FeatureVector, minKeystrokes int) RiskAssessment {
	fv := ex.Features

	indicators := map[string]bool{
		"typing_speed_anomaly":      fv.PPAvg > slowTypingIntervalMs,
		"pointer_pattern_irregular": fv.TrajDiffAvg > irregularTrajectoryPx,
		"correction_heavy":          fv.ErrorRate > correctionHeavyRate,
		"sparse_input":              ex.KeyEventCount < minKeystrokes,
	}

	ra := RiskAssessment{Indicators: indicators}
	if len(baseline) > 0 {
		ra.Baseline = true
		ra.Deviation = baselineDeviation(fv, baseline)
		indicators["baseline_deviation_high"] = ra.Deviation > deviationIndicatorTrip
	}

	tripped := 0
	for _, v := range indicators {
		if v {
			tripped++
		}
	}
	score := float64(tripped) / float64(len(indicators))
	if ra.Baseline {
		score = 0.5*score + 0.5*ra.Deviation
	}
	ra.Score = math.Max(0, math.Min(1, score))
	ra.Level = RiskLevel(ra.Score)
	return ra
}

// RealTimeRiskScore is AssessRisk reduced to its score.
func RealTimeRiskScore(session models.BehavioralSession, baseline []models.FeatureVector, minKeystrokes int) float64 {
	return AssessRisk(session, baseline, minKeystrokes).Score
}
