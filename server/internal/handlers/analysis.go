package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/services"
)

// AnalysisHandler serves the endpoints that work without a trained model.
type AnalysisHandler struct {
	log   *zap.Logger
	model *services.ModelService
}

func NewAnalysisHandler(log *zap.Logger, model *services.ModelService) *AnalysisHandler {
	return &AnalysisHandler{log: log, model: model}
}

func (h *AnalysisHandler) ExtractFeatures(c *gin.Context) {
	var session models.BehavioralSession
	if !bindSession(c, &session) {
		return
	}
	ext := metrics.Describe(session)
	respond(c, http.StatusOK, gin.H{
		"features":      ext.Features.Map(),
		"values":        ext.Features.Values(),
		"featureNames":  models.FeatureNames,
		"samples":       ext.Samples,
		"keyEventCount": ext.KeyEventCount,
	})
}

func (h *AnalysisHandler) RiskAssessment(c *gin.Context) {
	var session models.BehavioralSession
	if !bindSession(c, &session) {
		return
	}
	respond(c, http.StatusOK, h.model.AssessRisk(session))
}

// Validate reports problems in the payload instead of rejecting it, so it
// decodes without the structural check.
func (h *AnalysisHandler) Validate(c *gin.Context) {
	var session models.BehavioralSession
	if err := c.ShouldBindJSON(&session); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid session payload: "+err.Error())
		return
	}
	report := metrics.ValidateSession(session, h.model.MinKeystrokes())
	if !report.IsValid {
		h.log.Debug("Session failed validation", zap.Strings("errors", report.Errors))
	}
	respond(c, http.StatusOK, report)
}
