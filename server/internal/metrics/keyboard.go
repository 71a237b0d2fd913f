package metrics

import "github.com/maasir554/fingertail/server/internal/models"

// keyboardSamples holds the raw timing samples and counters gathered from the
// key event stream before they are reduced to min/avg/max.
type keyboardSamples struct {
	dwell          []float64
	flight         []float64
	pressRelease   []float64
	pressPress     []float64
	releaseRelease []float64

	upDown   int
	upUp     int
	errors   int
	inBounds int
	caps     int

	eventCount int
}

type timedKey struct {
	key         string
	pressed     bool
	textChanged bool
	at          float64
}

// filterKeyEvents drops tab presses and normalizes epochs to milliseconds.
func filterKeyEvents(events []models.KeyEvent) []timedKey {
	out := make([]timedKey, 0, len(events))
	for _, e := range events {
		if e.Key == models.KeyTab {
			continue
		}
		out = append(out, timedKey{
			key:         e.Key,
			pressed:     e.Event == models.KeyPressed,
			textChanged: e.TextChanged,
			at:          NormalizeEpoch(e.Epoch),
		})
	}
	return out
}

// calculateKeyboardSamples walks the filtered key stream. Every press is
// matched with the first later release of the same key. Between a press and
// its match (or the end of the stream when there is none) a release of any
// other key marks up-down and up-up, a press of another key marks up-down.
func calculateKeyboardSamples(events []models.KeyEvent) keyboardSamples {
	keys := filterKeyEvents(events)
	s := keyboardSamples{eventCount: len(keys)}
	n := len(keys)
	if n == 0 {
		return s
	}

	// releasesBefore[i] is the number of releases in keys[:i].
	// pressesBefore[i] is the number of presses in keys[:i].
	releasesBefore := make([]int, n+1)
	pressesBefore := make([]int, n+1)
	// sameKeyPresses[i] is the number of presses of keys[i].key in keys[:i+1].
	sameKeyPresses := make([]int, n)
	perKey := make(map[string]int)
	for i, k := range keys {
		releasesBefore[i+1] = releasesBefore[i]
		pressesBefore[i+1] = pressesBefore[i]
		if k.pressed {
			pressesBefore[i+1]++
			perKey[k.key]++
		} else {
			releasesBefore[i+1]++
		}
		sameKeyPresses[i] = perKey[k.key]
	}

	// Backward pass: nearest later release per key, and the two nearest later
	// presses with distinct keys for flight matching.
	matchRelease := make([]int, n)
	flightPress := make([]int, n)
	nextRelease := make(map[string]int)
	nearest, nearestOther := -1, -1
	for i := n - 1; i >= 0; i-- {
		k := keys[i]
		if k.pressed {
			if idx, ok := nextRelease[k.key]; ok {
				matchRelease[i] = idx
			} else {
				matchRelease[i] = -1
			}
			if nearest < 0 || keys[nearest].key != k.key {
				nearestOther = nearest
			}
			nearest = i
			continue
		}
		if nearest >= 0 && keys[nearest].key != k.key {
			flightPress[i] = nearest
		} else {
			flightPress[i] = nearestOther
		}
		nextRelease[k.key] = i
	}

	havePrev := false
	var prevPress, prevRelease float64
	for i, k := range keys {
		if !k.pressed {
			if j := flightPress[i]; j >= 0 {
				s.flight = append(s.flight, keys[j].at-k.at)
			}
			continue
		}

		switch k.key {
		case models.KeyBackspace:
			s.errors++
		case models.KeyCapsLock:
			s.caps++
		}
		if k.textChanged {
			s.inBounds++
		}

		end := matchRelease[i]
		if end < 0 {
			end = n
		}
		releasesBetween := releasesBefore[end] - releasesBefore[i+1]
		pressesBetween := pressesBefore[end] - pressesBefore[i+1]
		var sameKeyBetween int
		if end < n {
			// keys[end] is a release, so sameKeyPresses[end] counts presses up to end.
			sameKeyBetween = sameKeyPresses[end] - sameKeyPresses[i]
		} else {
			sameKeyBetween = perKey[k.key] - sameKeyPresses[i]
		}
		if releasesBetween > 0 {
			s.upUp++
		}
		if releasesBetween > 0 || pressesBetween-sameKeyBetween > 0 {
			s.upDown++
		}

		if matchRelease[i] < 0 {
			continue
		}
		release := keys[matchRelease[i]].at
		s.dwell = append(s.dwell, release-k.at)
		if havePrev {
			s.pressRelease = append(s.pressRelease, release-prevPress)
			s.pressPress = append(s.pressPress, k.at-prevPress)
			s.releaseRelease = append(s.releaseRelease, release-prevRelease)
		}
		prevPress, prevRelease, havePrev = k.at, release, true
	}

	return s
}

// rate divides count by the number of filtered key events.
func (s keyboardSamples) rate(count int) float64 {
	if s.eventCount == 0 {
		return 0
	}
	return float64(count) / float64(s.eventCount)
}
