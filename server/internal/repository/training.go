package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maasir554/fingertail/server/internal/models"
)

// Blob keys.
const (
	TrainingSessionsKey = "training_sessions"
	ModelStateKey       = "model_state"
)

// TrainingRepository encodes the training log and model state as JSON blobs.
type TrainingRepository struct {
	store BlobStore
}

func NewTrainingRepository(store BlobStore) *TrainingRepository {
	return &TrainingRepository{store: store}
}

// LoadSessions returns the stored training log; a missing blob is an empty log.
func (r *TrainingRepository) LoadSessions(ctx context.Context) ([]models.BehavioralSession, error) {
	var sessions []models.BehavioralSession
	if err := r.load(ctx, TrainingSessionsKey, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *TrainingRepository) SaveSessions(ctx context.Context, sessions []models.BehavioralSession) error {
	return r.save(ctx, TrainingSessionsKey, sessions)
}

// LoadState returns the stored model state; a missing blob is an untrained state.
func (r *TrainingRepository) LoadState(ctx context.Context) (models.ModelState, error) {
	var state models.ModelState
	if err := r.load(ctx, ModelStateKey, &state); err != nil {
		return models.ModelState{}, err
	}
	return state, nil
}

func (r *TrainingRepository) SaveState(ctx context.Context, state models.ModelState) error {
	return r.save(ctx, ModelStateKey, state)
}

// Clear removes both blobs.
func (r *TrainingRepository) Clear(ctx context.Context) error {
	return errors.Join(
		r.store.Delete(ctx, TrainingSessionsKey),
		r.store.Delete(ctx, ModelStateKey),
	)
}

func (r *TrainingRepository) load(ctx context.Context, key string, v any) error {
	raw, err := r.store.Load(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *TrainingRepository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
