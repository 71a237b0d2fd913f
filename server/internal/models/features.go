package models

import "fmt"

// FeatureCount is the fixed length of a FeatureVector.
const FeatureCount = 34

// FeatureVector is the numeric summary of one BehavioralSession.
type FeatureVector struct {
	DwellMax float64 `json:"dwell_max"`
	DwellAvg float64 `json:"dwell_avg"`
	DwellMin float64 `json:"dwell_min"`

	FlightMax float64 `json:"flight_max"`
	FlightAvg float64 `json:"flight_avg"`
	FlightMin float64 `json:"flight_min"`

	PRMax float64 `json:"PR_max"`
	PRAvg float64 `json:"PR_avg"`
	PRMin float64 `json:"PR_min"`

	PPMax float64 `json:"PP_max"`
	PPAvg float64 `json:"PP_avg"`
	PPMin float64 `json:"PP_min"`

	RRMax float64 `json:"RR_max"`
	RRAvg float64 `json:"RR_avg"`
	RRMin float64 `json:"RR_min"`

	UDRate          float64 `json:"UD_rate"`
	UDPresent       float64 `json:"UD_present"`
	UURate          float64 `json:"UU_rate"`
	UUPresent       float64 `json:"UU_present"`
	CapsRate        float64 `json:"caps_rate"`
	CapsPresent     float64 `json:"caps_present"`
	ErrorRate       float64 `json:"error_rate"`
	ErrorPresent    float64 `json:"error_present"`
	InBoundsRate    float64 `json:"in_bounds_rate"`
	InBoundsPresent float64 `json:"in_bounds_present"`

	ActualTrajMin float64 `json:"actual_traj_min"`
	ActualTrajAvg float64 `json:"actual_traj_avg"`
	ActualTrajMax float64 `json:"actual_traj_max"`

	IdealTrajMin float64 `json:"ideal_traj_min"`
	IdealTrajAvg float64 `json:"ideal_traj_avg"`
	IdealTrajMax float64 `json:"ideal_traj_max"`

	TrajDiffMin float64 `json:"traj_diff_min"`
	TrajDiffAvg float64 `json:"traj_diff_avg"`
	TrajDiffMax float64 `json:"traj_diff_max"`
}

// FeatureNames lists the field names in the order used by Values.
var FeatureNames = [FeatureCount]string{
	"dwell_max", "dwell_avg", "dwell_min",
	"flight_max", "flight_avg", "flight_min",
	"PR_max", "PR_avg", "PR_min",
	"PP_max", "PP_avg", "PP_min",
	"RR_max", "RR_avg", "RR_min",
	"UD_rate", "UD_present",
	"UU_rate", "UU_present",
	"caps_rate", "caps_present",
	"error_rate", "error_present",
	"in_bounds_rate", "in_bounds_present",
	"actual_traj_min", "actual_traj_avg", "actual_traj_max",
	"ideal_traj_min", "ideal_traj_avg", "ideal_traj_max",
	"traj_diff_min", "traj_diff_avg", "traj_diff_max",
}

func (f *FeatureVector) fields() [FeatureCount]*float64 {
	return [FeatureCount]*float64{
		&f.DwellMax, &f.DwellAvg, &f.DwellMin,
		&f.FlightMax, &f.FlightAvg, &f.FlightMin,
		&f.PRMax, &f.PRAvg, &f.PRMin,
		&f.PPMax, &f.PPAvg, &f.PPMin,
		&f.RRMax, &f.RRAvg, &f.RRMin,
		&f.UDRate, &f.UDPresent,
		&f.UURate, &f.UUPresent,
		&f.CapsRate, &f.CapsPresent,
		&f.ErrorRate, &f.ErrorPresent,
		&f.InBoundsRate, &f.InBoundsPresent,
		&f.ActualTrajMin, &f.ActualTrajAvg, &f.ActualTrajMax,
		&f.IdealTrajMin, &f.IdealTrajAvg, &f.IdealTrajMax,
		&f.TrajDiffMin, &f.TrajDiffAvg, &f.TrajDiffMax,
	}
}

// Values returns the vector as a slice in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	out := make([]float64, 0, FeatureCount)
	for _, p := range f.fields() {
		out = append(out, *p)
	}
	return out
}

// Map returns the vector keyed by feature name.
func (f FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i, v := range f.Values() {
		out[FeatureNames[i]] = v
	}
	return out
}

// FeatureVectorFromValues is the inverse of Values.
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	var f FeatureVector
	if len(values) != FeatureCount {
		return f, fmt.Errorf("feature vector needs %d values, got %d", FeatureCount, len(values))
	}
	for i, p := range f.fields() {
		*p = values[i]
	}
	return f, nil
}

// FeatureIndex returns the position of name in FeatureNames, or -1.
func FeatureIndex(name string) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}
