package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/maasir554/fingertail/server/internal/models"
)

// MetricResult summarizes one list of timing or distance samples. When no
// samples exist every value is zero and Calculated is false.
type MetricResult struct {
	Min        float64 `json:"min"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
	Calculated bool    `json:"calculated"`
	SampleSize int     `json:"sampleSize"`
}

func summarize(samples []float64) MetricResult {
	if len(samples) == 0 {
		return MetricResult{}
	}
	return MetricResult{
		Min:        floats.Min(samples),
		Avg:        stat.Mean(samples, nil),
		Max:        floats.Max(samples),
		Calculated: true,
		SampleSize: len(samples),
	}
}

func presence(rate float64) float64 {
	if rate > 0 {
		return 1
	}
	return 0
}

// Extraction is a feature vector together with the sample summaries it was
// reduced from.
type Extraction struct {
	Features      models.FeatureVector    `json:"features"`
	Samples       map[string]MetricResult `json:"samples"`
	KeyEventCount int                     `json:"keyEventCount"`
}

// ExtractFeatures maps a session to its feature vector. It never fails: any
// statistic without samples is zero.
func ExtractFeatures(session models.BehavioralSession) models.FeatureVector {
	return Describe(session).Features
}

// Describe runs the extraction and keeps the intermediate summaries.
func Describe(session models.BehavioralSession) Extraction {
	kb := calculateKeyboardSamples(session.KeyEvents)
	tr := calculateTrajectorySamples(session.MouseEvents)

	samples := map[string]MetricResult{
		"dwell":       summarize(kb.dwell),
		"flight":      summarize(kb.flight),
		"PR":          summarize(kb.pressRelease),
		"PP":          summarize(kb.pressPress),
		"RR":          summarize(kb.releaseRelease),
		"actual_traj": summarize(tr.actual),
		"ideal_traj":  summarize(tr.ideal),
		"traj_diff":   summarize(tr.diff),
	}

	udRate := kb.rate(kb.upDown)
	uuRate := kb.rate(kb.upUp)
	capsRate := kb.rate(kb.caps)
	errorRate := kb.rate(kb.errors)
	inBoundsRate := kb.rate(kb.inBounds)

	fv := models.FeatureVector{
		DwellMax: samples["dwell"].Max, DwellAvg: samples["dwell"].Avg, DwellMin: samples["dwell"].Min,
		FlightMax: samples["flight"].Max, FlightAvg: samples["flight"].Avg, FlightMin: samples["flight"].Min,
		PRMax: samples["PR"].Max, PRAvg: samples["PR"].Avg, PRMin: samples["PR"].Min,
		PPMax: samples["PP"].Max, PPAvg: samples["PP"].Avg, PPMin: samples["PP"].Min,
		RRMax: samples["RR"].Max, RRAvg: samples["RR"].Avg, RRMin: samples["RR"].Min,

		UDRate: udRate, UDPresent: presence(udRate),
		UURate: uuRate, UUPresent: presence(uuRate),
		CapsRate: capsRate, CapsPresent: presence(capsRate),
		ErrorRate: errorRate, ErrorPresent: presence(errorRate),
		InBoundsRate: inBoundsRate, InBoundsPresent: presence(inBoundsRate),

		ActualTrajMin: samples["actual_traj"].Min, ActualTrajAvg: samples["actual_traj"].Avg, ActualTrajMax: samples["actual_traj"].Max,
		IdealTrajMin: samples["ideal_traj"].Min, IdealTrajAvg: samples["ideal_traj"].Avg, IdealTrajMax: samples["ideal_traj"].Max,
		TrajDiffMin: samples["traj_diff"].Min, TrajDiffAvg: samples["traj_diff"].Avg, TrajDiffMax: samples["traj_diff"].Max,
	}

	return Extraction{Features: fv, Samples: samples, KeyEventCount: kb.eventCount}
}

// ExtractAll extracts every non-empty session in order.
func ExtractAll(sessions []models.BehavioralSession) []models.FeatureVector {
	out := make([]models.FeatureVector, 0, len(sessions))
	for _, s := range sessions {
		if s.IsEmpty() {
			continue
		}
		out = append(out, ExtractFeatures(s))
	}
	return out
}
