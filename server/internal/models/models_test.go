package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureVectorValuesOrder(t *testing.T) {
	values := make([]float64, FeatureCount)
	for i := range values {
		values[i] = float64(i + 1)
	}
	fv, err := FeatureVectorFromValues(values)
	require.NoError(t, err)

	assert.Equal(t, values, fv.Values())
	assert.Equal(t, 1.0, fv.DwellMax)
	assert.Equal(t, float64(FeatureCount), fv.TrajDiffMax)

	m := fv.Map()
	assert.Len(t, m, FeatureCount)
	for i, name := range FeatureNames {
		assert.Equal(t, values[i], m[name], name)
	}

	_, err = FeatureVectorFromValues(values[:3])
	assert.Error(t, err)
}

func TestFeatureVectorJSONMatchesNames(t *testing.T) {
	raw, err := json.Marshal(FeatureVector{})
	require.NoError(t, err)
	var keys map[string]float64
	require.NoError(t, json.Unmarshal(raw, &keys))

	assert.Len(t, keys, FeatureCount)
	for _, name := range FeatureNames {
		assert.Contains(t, keys, name)
	}
}

func TestFeatureIndex(t *testing.T) {
	assert.Equal(t, 0, FeatureIndex("dwell_max"))
	assert.Equal(t, FeatureCount-1, FeatureIndex("traj_diff_max"))
	assert.Equal(t, -1, FeatureIndex("typing_speed"))
}

func TestEpochUnmarshalJSON(t *testing.T) {
	var events []KeyEvent
	require.NoError(t, json.Unmarshal([]byte(`[
		{"key":"a","event":"pressed","epoch":1700000000000},
		{"key":"a","event":"released","epoch":"1700000000090"},
		{"key":"b","event":"pressed","epoch":"soon"},
		{"key":"b","event":"released","epoch":null}
	]`), &events))

	assert.Equal(t, Epoch(1700000000000), events[0].Epoch)
	assert.Equal(t, Epoch(1700000000090), events[1].Epoch)
	assert.Zero(t, events[2].Epoch)
	assert.Zero(t, events[3].Epoch)
}

func TestBehavioralSessionIsEmpty(t *testing.T) {
	assert.True(t, BehavioralSession{}.IsEmpty())
	assert.True(t, BehavioralSession{FormData: map[string]any{"a": "b"}}.IsEmpty())
	assert.False(t, BehavioralSession{MouseEvents: []MouseEvent{{Event: "click"}}}.IsEmpty())
}

func TestBehavioralSessionFormDataAcceptsAnyJSON(t *testing.T) {
	var s BehavioralSession
	body := `{"keyEvents":[],"mouseEvents":[],"formData":{"email":"a@b.c","age":42,"subscribe":true,"tags":["x"]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, "a@b.c", s.FormData["email"])
	assert.Equal(t, 42.0, s.FormData["age"])
	assert.Equal(t, true, s.FormData["subscribe"])
	assert.Equal(t, []any{"x"}, s.FormData["tags"])
	assert.True(t, s.IsEmpty())
}
