package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/utils"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC(),
	})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"error":     msg,
		"timestamp": time.Now().UTC(),
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrModelNotTrained):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// bindSession decodes and structurally validates a session body. It writes
// the error response itself and reports whether the handler may continue.
func bindSession(c *gin.Context, session *models.BehavioralSession) bool {
	if err := c.ShouldBindJSON(session); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid session payload: "+err.Error())
		return false
	}
	if err := utils.Validator().Struct(session); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(c, http.StatusBadRequest, "Invalid session payload: "+verrs[0].Error())
			return false
		}
		respondError(c, http.StatusBadRequest, "Invalid session payload")
		return false
	}
	return true
}
