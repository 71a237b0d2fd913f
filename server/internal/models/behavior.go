package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Key identifiers with special meaning to the feature extractor.
const (
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
	KeyCapsLock  = "CapsLock"
)

// Key event kinds.
const (
	KeyPressed  = "pressed"
	KeyReleased = "released"
)

// Epoch is a recorder timestamp in seconds or milliseconds since an arbitrary
// origin. Recorders send it either as a number or as a numeric string; any
// other value decodes to zero.
type Epoch float64

func parseEpoch(raw string) Epoch {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Epoch(f)
}

func (e *Epoch) UnmarshalJSON(b []byte) error {
	*e = parseEpoch(string(b))
	return nil
}

func (e *Epoch) UnmarshalYAML(value *yaml.Node) error {
	*e = parseEpoch(value.Value)
	return nil
}

// KeyEvent is a single key press or release recorded on a form field.
type KeyEvent struct {
	Key         string `json:"key" yaml:"key" validate:"required"`
	Event       string `json:"event" yaml:"event" validate:"required,oneof=pressed released"`
	InputBox    string `json:"inputBox" yaml:"inputBox"`
	TextChanged bool   `json:"textChanged" yaml:"textChanged"`
	Timestamp   string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Epoch       Epoch  `json:"epoch" yaml:"epoch" validate:"epoch"`
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// MouseEvent is a pointer sample. Samples sharing a MovementID belong to one
// continuous gesture; the recorder assigns the ids.
type MouseEvent struct {
	Event       string `json:"event" yaml:"event" validate:"required"`
	Coordinates *Point `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Epoch       Epoch  `json:"epoch" yaml:"epoch" validate:"epoch"`
	MovementID  *int   `json:"movementId,omitempty" yaml:"movementId,omitempty"`
}

// BehavioralSession is one completed recording interval.
type BehavioralSession struct {
	ID          string       `json:"id,omitempty" yaml:"id,omitempty"`
	KeyEvents   []KeyEvent   `json:"keyEvents" yaml:"keyEvents" validate:"dive"`
	MouseEvents []MouseEvent `json:"mouseEvents" yaml:"mouseEvents" validate:"dive"`
	// FormData is the submitted form, kept as-is and never scored.
	FormData   map[string]any `json:"formData,omitempty" yaml:"formData,omitempty"`
	RecordedAt time.Time      `json:"recordedAt,omitempty" yaml:"recordedAt,omitempty"`
}

// IsEmpty reports whether the session carries no events at all.
func (s BehavioralSession) IsEmpty() bool {
	return len(s.KeyEvents) == 0 && len(s.MouseEvents) == 0
}
