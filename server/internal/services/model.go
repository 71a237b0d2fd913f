package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/classifier"
	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/monitoring"
	"github.com/maasir554/fingertail/server/internal/repository"
)

// DefaultMinTrainingSessions is the training log size that enables training.
const DefaultMinTrainingSessions = 10

// ModelOptions tunes the lifecycle manager.
type ModelOptions struct {
	MinTrainingSessions int
	MinKeystrokes       int
}

// Status is a read-only snapshot of the lifecycle state.
type Status struct {
	SessionCount         int  `json:"sessionCount"`
	Trained              bool `json:"trained"`
	IsReady              bool `json:"isReady"`
	HasLegitimateProfile bool `json:"hasLegitimateProfile"`
	ProfileSize          int  `json:"profileSize"`
	MinTrainingSessions  int  `json:"minTrainingSessions"`
}

// ModelService owns the training log and the reference profile. All methods
// are safe for concurrent use; mutations are serialized.
type ModelService struct {
	log   *zap.Logger
	repo  *repository.TrainingRepository
	clf   *classifier.GaussianNB
	stats *monitoring.Collector
	opts  ModelOptions

	mu       sync.Mutex
	sessions []models.BehavioralSession
	state    models.ModelState
}

// NewModelService builds the service and restores any persisted state. Read
// failures leave the service untrained with an empty log.
func NewModelService(ctx context.Context, log *zap.Logger, repo *repository.TrainingRepository, clf *classifier.GaussianNB, stats *monitoring.Collector, opts ModelOptions) *ModelService {
	if opts.MinTrainingSessions <= 0 {
		opts.MinTrainingSessions = DefaultMinTrainingSessions
	}
	if opts.MinKeystrokes <= 0 {
		opts.MinKeystrokes = metrics.DefaultMinKeystrokes
	}
	if stats == nil {
		stats = monitoring.NewCollector(nil)
	}
	s := &ModelService{log: log, repo: repo, clf: clf, stats: stats, opts: opts}
	s.restore(ctx)
	return s
}

func (s *ModelService) restore(ctx context.Context) {
	sessions, err := s.repo.LoadSessions(ctx)
	if err != nil {
		s.persistenceFailed("load_sessions", err)
		sessions = nil
	}
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		s.persistenceFailed("load_state", err)
		state = models.ModelState{}
	}
	if state.Trained && len(state.LegitimateFeatures) == 0 {
		s.log.Warn("Persisted model marked trained without features, discarding")
		state = models.ModelState{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	s.state = state
	s.refreshGauges()
	s.log.Info("Model state restored",
		zap.Int("sessions", len(sessions)),
		zap.Bool("trained", state.Trained),
		zap.Int("profile_size", len(state.LegitimateFeatures)),
	)
}

// AddTrainingSession appends a session to the training log and persists the
// log. The first time the log reaches the minimum size the model is trained.
func (s *ModelService) AddTrainingSession(ctx context.Context, session models.BehavioralSession) Status {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.RecordedAt.IsZero() {
		session.RecordedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, session)
	if err := s.repo.SaveSessions(ctx, s.sessions); err != nil {
		s.persistenceFailed("save_sessions", err)
	}
	s.log.Info("Training session recorded",
		zap.String("session_id", session.ID),
		zap.Int("sessions", len(s.sessions)),
	)

	if len(s.sessions) >= s.opts.MinTrainingSessions && !s.state.Trained {
		if err := s.trainLocked(ctx, "auto"); err != nil {
			s.log.Warn("Automatic training failed", zap.Error(err))
		}
	}
	s.refreshGauges()
	return s.statusLocked()
}

// Train rebuilds the legitimate profile from the training log. It returns
// models.ErrInsufficientData when the log is too short.
func (s *ModelService) Train(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshGauges()
	return s.trainLocked(ctx, "manual")
}

// Retrain discards the current profile and recomputes it from the existing
// training log, whatever the current state.
func (s *ModelService) Retrain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshGauges()

	s.state = models.ModelState{}
	if err := s.trainLocked(ctx, "retrain"); err != nil {
		if saveErr := s.repo.SaveState(ctx, s.state); saveErr != nil {
			s.persistenceFailed("save_state", saveErr)
		}
		return err
	}
	return nil
}

// RetrainIfStale retrains when sessions were logged after the last training.
func (s *ModelService) RetrainIfStale(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshGauges()

	if !s.state.Trained || countNonEmpty(s.sessions) == len(s.state.LegitimateFeatures) {
		return false, nil
	}
	if err := s.trainLocked(ctx, "scheduled"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ModelService) trainLocked(ctx context.Context, trigger string) error {
	if len(s.sessions) < s.opts.MinTrainingSessions {
		return fmt.Errorf("%w: have %d sessions, need %d", models.ErrInsufficientData, len(s.sessions), s.opts.MinTrainingSessions)
	}

	start := time.Now()
	features := metrics.ExtractAll(s.sessions)
	s.stats.ExtractionSeconds.Observe(time.Since(start).Seconds())
	if len(features) == 0 {
		return fmt.Errorf("%w: every logged session is empty", models.ErrInsufficientData)
	}

	s.state = models.ModelState{Trained: true, LegitimateFeatures: features}
	if err := s.repo.SaveState(ctx, s.state); err != nil {
		s.persistenceFailed("save_state", err)
	}
	s.stats.Trainings.WithLabelValues(trigger).Inc()
	s.log.Info("Model trained",
		zap.String("trigger", trigger),
		zap.Int("sessions", len(s.sessions)),
		zap.Int("profile_size", len(features)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Reset clears the training log, the profile and both persisted blobs.
func (s *ModelService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.state = models.ModelState{}
	if err := s.repo.Clear(ctx); err != nil {
		s.persistenceFailed("clear", err)
	}
	s.refreshGauges()
	s.log.Info("Model reset")
}

// Predict scores a session against the profile. It fails with
// models.ErrModelNotTrained while untrained.
func (s *ModelService) Predict(session models.BehavioralSession) (models.PredictionResult, error) {
	start := time.Now()
	ex := metrics.Describe(session)
	s.stats.ExtractionSeconds.Observe(time.Since(start).Seconds())

	trained, legit := s.profile()
	res, err := s.predictAgainst(ex.Features, trained, legit)
	if err != nil {
		return res, err
	}
	risk := metrics.AssessExtraction(ex, legit, s.opts.MinKeystrokes)
	res.RiskScore = risk.Score
	res.RiskLevel = risk.Level
	return res, nil
}

// PredictVector scores an already extracted feature vector.
func (s *ModelService) PredictVector(fv models.FeatureVector) (models.PredictionResult, error) {
	trained, legit := s.profile()
	return s.predictAgainst(fv, trained, legit)
}

// profile snapshots the trained flag and the profile under one lock. The
// slice is replaced, never mutated, so it is safe to read after unlocking.
func (s *ModelService) profile() (bool, []models.FeatureVector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Trained, s.state.LegitimateFeatures
}

func (s *ModelService) predictAgainst(fv models.FeatureVector, trained bool, legit []models.FeatureVector) (models.PredictionResult, error) {
	if !trained {
		s.stats.PredictionFailures.WithLabelValues("not_trained").Inc()
		return models.PredictionResult{}, models.ErrModelNotTrained
	}
	res, err := s.clf.Predict(fv, legit)
	if err != nil {
		s.stats.PredictionFailures.WithLabelValues("classifier").Inc()
		return res, err
	}
	res.Features = &fv
	res.Timestamp = time.Now().UTC()
	outcome := "fraudulent"
	if res.IsLegitimate() {
		outcome = "legitimate"
	}
	s.stats.Predictions.WithLabelValues(outcome).Inc()
	return res, nil
}

// AssessRisk runs the classifier-independent heuristic, using the profile as
// a baseline when one exists.
func (s *ModelService) AssessRisk(session models.BehavioralSession) metrics.RiskAssessment {
	return metrics.AssessRisk(session, s.LegitimateFeatures(), s.opts.MinKeystrokes)
}

// RealTimeRiskScore is AssessRisk reduced to a number in [0,1].
func (s *ModelService) RealTimeRiskScore(session models.BehavioralSession) float64 {
	return s.AssessRisk(session).Score
}

// LegitimateFeatures returns a copy of the profile (empty when untrained).
func (s *ModelService) LegitimateFeatures() []models.FeatureVector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Trained {
		return nil
	}
	out := make([]models.FeatureVector, len(s.state.LegitimateFeatures))
	copy(out, s.state.LegitimateFeatures)
	return out
}

// NegativeCount is the size of the fraudulent reference set currently in use.
func (s *ModelService) NegativeCount() int {
	return len(s.clf.NegativeSet(s.LegitimateFeatures()))
}

func (s *ModelService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// IsReady reports a trained model backed by a full training log.
func (s *ModelService) IsReady() bool {
	return s.Status().IsReady
}

// HasLegitimateProfile reports whether enough sessions were logged to train.
func (s *ModelService) HasLegitimateProfile() bool {
	return s.Status().HasLegitimateProfile
}

func (s *ModelService) MinKeystrokes() int {
	return s.opts.MinKeystrokes
}

func (s *ModelService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *ModelService) statusLocked() Status {
	enough := len(s.sessions) >= s.opts.MinTrainingSessions
	return Status{
		SessionCount:         len(s.sessions),
		Trained:              s.state.Trained,
		IsReady:              s.state.Trained && enough,
		HasLegitimateProfile: enough,
		ProfileSize:          len(s.state.LegitimateFeatures),
		MinTrainingSessions:  s.opts.MinTrainingSessions,
	}
}

func (s *ModelService) refreshGauges() {
	s.stats.TrainingSessions.Set(float64(len(s.sessions)))
	if s.state.Trained {
		s.stats.ModelTrained.Set(1)
	} else {
		s.stats.ModelTrained.Set(0)
	}
}

// persistenceFailed records a blob store failure. The in-memory transition
// that triggered it still stands.
func (s *ModelService) persistenceFailed(op string, err error) {
	if errors.Is(err, context.Canceled) {
		s.log.Warn("Persistence cancelled", zap.String("op", op))
	} else {
		s.log.Error("Persistence failed", zap.String("op", op), zap.Error(err))
	}
	s.stats.PersistenceFailures.WithLabelValues(op).Inc()
}

func countNonEmpty(sessions []models.BehavioralSession) int {
	n := 0
	for _, s := range sessions {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}
