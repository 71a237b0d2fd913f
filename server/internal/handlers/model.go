package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/services"
	"github.com/maasir554/fingertail/server/internal/utils"
)

type ModelHandler struct {
	log     *zap.Logger
	model   *services.ModelService
	alerts  *services.AlertNotifier
	storage string
}

func NewModelHandler(log *zap.Logger, model *services.ModelService, alerts *services.AlertNotifier, storage string) *ModelHandler {
	return &ModelHandler{log: log, model: model, alerts: alerts, storage: storage}
}

func (h *ModelHandler) Health(c *gin.Context) {
	st := h.model.Status()
	respond(c, http.StatusOK, gin.H{
		"status":       "healthy",
		"modelTrained": st.Trained,
		"sessionCount": st.SessionCount,
	})
}

func (h *ModelHandler) Info(c *gin.Context) {
	st := h.model.Status()
	respond(c, http.StatusOK, gin.H{
		"status":        st,
		"featureNames":  models.FeatureNames,
		"featureCount":  models.FeatureCount,
		"negativeCount": h.model.NegativeCount(),
		"minKeystrokes": h.model.MinKeystrokes(),
		"storage":       h.storage,
	})
}

// enoughKeystrokes rejects sessions too short to carry a typing rhythm.
func (h *ModelHandler) enoughKeystrokes(c *gin.Context, session models.BehavioralSession) bool {
	count := metrics.Describe(session).KeyEventCount
	if !utils.IsMinimumKeystrokes(count, h.model.MinKeystrokes()) {
		h.log.Debug("Session below keystroke minimum", zap.Int("key_events", count))
		respondError(c, http.StatusUnprocessableEntity, models.ErrInsufficientData.Error()+": too few key events")
		return false
	}
	return true
}

func (h *ModelHandler) AddTrainingSession(c *gin.Context) {
	var session models.BehavioralSession
	if !bindSession(c, &session) || !h.enoughKeystrokes(c, session) {
		return
	}
	st := h.model.AddTrainingSession(c.Request.Context(), session)
	respond(c, http.StatusCreated, st)
}

func (h *ModelHandler) TrainingStatus(c *gin.Context) {
	respond(c, http.StatusOK, h.model.Status())
}

func (h *ModelHandler) Train(c *gin.Context) {
	if err := h.model.Train(c.Request.Context()); err != nil {
		respondError(c, statusFor(err), err.Error())
		return
	}
	respond(c, http.StatusOK, h.model.Status())
}

func (h *ModelHandler) Retrain(c *gin.Context) {
	if err := h.model.Retrain(c.Request.Context()); err != nil {
		respondError(c, statusFor(err), err.Error())
		return
	}
	respond(c, http.StatusOK, h.model.Status())
}

func (h *ModelHandler) Reset(c *gin.Context) {
	h.model.Reset(c.Request.Context())
	h.log.Warn("Model reset via API", zap.String("client_ip", c.ClientIP()))
	respond(c, http.StatusOK, h.model.Status())
}

func (h *ModelHandler) Predict(c *gin.Context) {
	var session models.BehavioralSession
	if !bindSession(c, &session) || !h.enoughKeystrokes(c, session) {
		return
	}
	res, err := h.model.Predict(session)
	if err != nil {
		respondError(c, statusFor(err), err.Error())
		return
	}
	if h.alerts != nil {
		h.alerts.Notify(session.ID, res)
	}
	respond(c, http.StatusOK, res)
}
