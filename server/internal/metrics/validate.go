package metrics

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/utils"
)

// ValidationReport describes the shape and completeness of a recorded session.
type ValidationReport struct {
	IsValid          bool     `json:"isValid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	DataQualityScore float64  `json:"dataQualityScore"`
}

func quality(count, full, partial int) float64 {
	switch {
	case count >= full:
		return 1
	case count >= partial:
		return 0.5
	default:
		return 0
	}
}

// ValidateSession checks a session before it is used for training or
// prediction. Structural problems are errors, thin data is a warning.
func ValidateSession(session models.BehavioralSession, minKeystrokes int) ValidationReport {
	report := ValidationReport{IsValid: true, Errors: []string{}, Warnings: []string{}}

	if err := utils.Validator().Struct(session); err != nil {
		report.IsValid = false
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				report.Errors = append(report.Errors, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
			}
		} else {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	keyCount := len(filterKeyEvents(session.KeyEvents))
	switch {
	case keyCount == 0:
		report.Warnings = append(report.Warnings, "No key events recorded")
	case keyCount < minKeystrokes:
		report.Warnings = append(report.Warnings, fmt.Sprintf("Very few key events detected (%d < %d)", keyCount, minKeystrokes))
	}
	if len(session.MouseEvents) == 0 {
		report.Warnings = append(report.Warnings, "No pointer events recorded")
	}

	report.DataQualityScore = (quality(len(session.KeyEvents), 5, 2) + quality(len(session.MouseEvents), 3, 1)) / 2
	return report
}
