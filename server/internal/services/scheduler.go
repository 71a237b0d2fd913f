package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/models"
)

// Retrainer is the part of ModelService the scheduler drives.
type Retrainer interface {
	RetrainIfStale(ctx context.Context) (bool, error)
}

// RetrainScheduler periodically folds newly logged sessions into the profile.
type RetrainScheduler struct {
	log      *zap.Logger
	model    Retrainer
	interval time.Duration
}

func NewRetrainScheduler(log *zap.Logger, model Retrainer, interval time.Duration) *RetrainScheduler {
	return &RetrainScheduler{
		log:      log,
		model:    model,
		interval: interval,
	}
}

// Start runs the scheduler in a goroutine until ctx is done. A non-positive
// interval disables it.
func (s *RetrainScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("Retrain scheduler disabled")
		return
	}
	s.log.Info("Starting retrain scheduler...", zap.Duration("interval", s.interval))
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Retrain scheduler stopped")
				return
			case <-ticker.C:
				s.runRetrainCheck(ctx)
			}
		}
	}()
}

func (s *RetrainScheduler) runRetrainCheck(ctx context.Context) {
	s.log.Debug("Running retrain check")
	retrained, err := s.model.RetrainIfStale(ctx)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			s.log.Debug("Retrain skipped", zap.Error(err))
			return
		}
		s.log.Error("Scheduled retrain failed", zap.Error(err))
		return
	}
	if retrained {
		s.log.Info("Profile refreshed with new training sessions")
	}
}
