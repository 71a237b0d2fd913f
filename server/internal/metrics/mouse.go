package metrics

import (
	"math"

	"github.com/maasir554/fingertail/server/internal/models"
)

// trajectorySamples holds one sample per qualifying movement group.
type trajectorySamples struct {
	actual []float64
	ideal  []float64
	diff   []float64
}

func distance(a, b models.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// groupMovements splits pointer samples by movement id, keeping groups in the
// order their first sample appears. A sample needs both a movement id and
// coordinates to join a group; lacking either one excludes it, which is
// stricter than dropping only samples that lack both.
func groupMovements(events []models.MouseEvent) [][]models.Point {
	index := make(map[int]int)
	var groups [][]models.Point
	for _, e := range events {
		if e.MovementID == nil || e.Coordinates == nil {
			continue
		}
		id := *e.MovementID
		pos, ok := index[id]
		if !ok {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], *e.Coordinates)
	}
	return groups
}

// calculateTrajectorySamples compares the travelled path of every movement
// group with the straight line between its endpoints.
func calculateTrajectorySamples(events []models.MouseEvent) trajectorySamples {
	var s trajectorySamples
	for _, points := range groupMovements(events) {
		if len(points) < 2 {
			continue
		}
		actual := 0.0
		for i := 1; i < len(points); i++ {
			actual += distance(points[i-1], points[i])
		}
		ideal := distance(points[0], points[len(points)-1])
		s.actual = append(s.actual, actual)
		s.ideal = append(s.ideal, ideal)
		s.diff = append(s.diff, actual-ideal)
	}
	return s
}
