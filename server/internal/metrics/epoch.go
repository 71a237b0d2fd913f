package metrics

import "github.com/maasir554/fingertail/server/internal/models"

// secondsCutoff separates second-resolution epochs from millisecond ones.
const secondsCutoff = 1e12

// NormalizeEpoch converts a recorder epoch to milliseconds.
func NormalizeEpoch(e models.Epoch) float64 {
	v := float64(e)
	if v < secondsCutoff {
		return v * 1000
	}
	return v
}
