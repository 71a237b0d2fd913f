package models

import "errors"

var (
	// ErrInsufficientData is returned when training is requested before the
	// minimum number of sessions has been recorded.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrModelNotTrained is returned when a prediction is requested before a
	// legitimate profile exists.
	ErrModelNotTrained = errors.New("model not trained")
)
