package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maasir554/fingertail/server/internal/models"
)

func typed(n int, gap float64) []models.KeyEvent {
	var out []models.KeyEvent
	at := 0.0
	for i := 0; i < n; i++ {
		key := string(rune('a' + i%26))
		out = append(out, press(key, at), release(key, at+80))
		at += gap
	}
	return out
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, RiskLow, RiskLevel(0))
	assert.Equal(t, RiskLow, RiskLevel(0.29))
	assert.Equal(t, RiskMedium, RiskLevel(0.3))
	assert.Equal(t, RiskMedium, RiskLevel(0.69))
	assert.Equal(t, RiskHigh, RiskLevel(0.7))
	assert.Equal(t, RiskHigh, RiskLevel(1))
}

func TestAssessRisk_NormalTyping(t *testing.T) {
	session := models.BehavioralSession{KeyEvents: typed(10, 200)}

	ra := AssessRisk(session, nil, DefaultMinKeystrokes)
	assert.False(t, ra.Baseline)
	assert.Zero(t, ra.Score)
	assert.Equal(t, RiskLow, ra.Level)
	assert.Len(t, ra.Indicators, 4)
}

func TestAssessRisk_SparseSlowInput(t *testing.T) {
	session := models.BehavioralSession{KeyEvents: typed(2, 6000)}

	ra := AssessRisk(session, nil, DefaultMinKeystrokes)
	assert.True(t, ra.Indicators["typing_speed_anomaly"])
	assert.True(t, ra.Indicators["sparse_input"])
	assert.False(t, ra.Indicators["correction_heavy"])
	assert.Equal(t, 0.5, ra.Score)
	assert.Equal(t, RiskMedium, ra.Level)
}

func TestAssessRisk_WithBaseline(t *testing.T) {
	session := models.BehavioralSession{KeyEvents: typed(10, 200)}
	baseline := []models.FeatureVector{ExtractFeatures(session), ExtractFeatures(session)}

	ra := AssessRisk(session, baseline, DefaultMinKeystrokes)
	require.True(t, ra.Baseline)
	assert.Zero(t, ra.Deviation)
	assert.False(t, ra.Indicators["baseline_deviation_high"])
	assert.Zero(t, ra.Score)

	slow := models.BehavioralSession{KeyEvents: typed(10, 2000)}
	ra = AssessRisk(slow, baseline, DefaultMinKeystrokes)
	assert.Greater(t, ra.Deviation, 0.5)
	assert.True(t, ra.Indicators["baseline_deviation_high"])
	assert.GreaterOrEqual(t, ra.Score, 0.0)
	assert.LessOrEqual(t, ra.Score, 1.0)
	assert.Equal(t, ra.Score, RealTimeRiskScore(slow, baseline, DefaultMinKeystrokes))
}

func TestValidateSession(t *testing.T) {
	t.Run("complete session", func(t *testing.T) {
		session := models.BehavioralSession{
			KeyEvents:   typed(10, 150),
			MouseEvents: []models.MouseEvent{move(1, 0, 0, 0), move(1, 1, 1, 5), move(1, 2, 2, 10)},
		}
		report := ValidateSession(session, DefaultMinKeystrokes)
		assert.True(t, report.IsValid)
		assert.Empty(t, report.Errors)
		assert.Empty(t, report.Warnings)
		assert.Equal(t, 1.0, report.DataQualityScore)
	})

	t.Run("thin session", func(t *testing.T) {
		session := models.BehavioralSession{KeyEvents: typed(1, 150)}
		report := ValidateSession(session, DefaultMinKeystrokes)
		assert.True(t, report.IsValid)
		assert.Len(t, report.Warnings, 2)
		assert.Contains(t, report.Warnings[0], "Very few key events")
		assert.Equal(t, 0.25, report.DataQualityScore)
	})

	t.Run("malformed events", func(t *testing.T) {
		session := models.BehavioralSession{KeyEvents: []models.KeyEvent{
			{Key: "a", Event: "held", Epoch: 10},
			{Event: models.KeyReleased, Epoch: -1},
		}}
		report := ValidateSession(session, DefaultMinKeystrokes)
		assert.False(t, report.IsValid)
		assert.Len(t, report.Errors, 3)
		assert.Equal(t, 0.25, report.DataQualityScore)
	})
}
