package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/classifier"
	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/monitoring"
	"github.com/maasir554/fingertail/server/internal/repository"
)

// memStore is an in-memory BlobStore whose operations can be made to fail.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return v, nil
}

func (m *memStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data, key)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

const base = 1700000000000.0

// sample builds a typing-plus-pointer session whose rhythm shifts with i.
func sample(i int) models.BehavioralSession {
	var keys []models.KeyEvent
	at := base
	for k := 0; k < 12; k++ {
		key := string(rune('a' + (k+i)%26))
		dwell := 80 + float64(i%5)*3 + float64(k%3)
		keys = append(keys,
			models.KeyEvent{Key: key, Event: models.KeyPressed, TextChanged: true, Epoch: models.Epoch(at)},
			models.KeyEvent{Key: key, Event: models.KeyReleased, Epoch: models.Epoch(at + dwell)},
		)
		at += 150 + float64(i%4)*10 + float64(k%2)*7
	}
	id := 1
	mouse := []models.MouseEvent{
		{Event: "mousemove", Coordinates: &models.Point{X: 0, Y: 0}, Epoch: models.Epoch(at), MovementID: &id},
		{Event: "mousemove", Coordinates: &models.Point{X: 30, Y: 10 + float64(i)}, Epoch: models.Epoch(at + 16), MovementID: &id},
		{Event: "mousemove", Coordinates: &models.Point{X: 60, Y: 40}, Epoch: models.Epoch(at + 32), MovementID: &id},
	}
	return models.BehavioralSession{KeyEvents: keys, MouseEvents: mouse}
}

func newService(t *testing.T, store repository.BlobStore) (*ModelService, *monitoring.Collector) {
	t.Helper()
	stats := monitoring.NewCollector(nil)
	svc := NewModelService(context.Background(), zap.NewNop(), repository.NewTrainingRepository(store), classifier.New(nil), stats, ModelOptions{})
	return svc, stats
}

func addSessions(t *testing.T, svc *ModelService, from, to int) Status {
	t.Helper()
	var st Status
	for i := from; i < to; i++ {
		st = svc.AddTrainingSession(context.Background(), sample(i))
	}
	return st
}

func TestModelService_TrainNeedsMinimumSessions(t *testing.T) {
	svc, stats := newService(t, newMemStore())
	ctx := context.Background()

	st := addSessions(t, svc, 0, 9)
	assert.Equal(t, 9, st.SessionCount)
	assert.False(t, st.Trained)
	assert.False(t, st.HasLegitimateProfile)

	err := svc.Train(ctx)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.False(t, svc.Status().Trained)

	st = addSessions(t, svc, 9, 10)
	assert.True(t, st.Trained, "the tenth session trains automatically")
	assert.True(t, st.IsReady)
	assert.Equal(t, 10, st.ProfileSize)
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.Trainings.WithLabelValues("auto")))

	require.NoError(t, svc.Train(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.ModelTrained))
	assert.Equal(t, 10.0, testutil.ToFloat64(stats.TrainingSessions))
}

func TestModelService_AssignsSessionIdentity(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	svc.AddTrainingSession(context.Background(), sample(0))

	sessions, err := repository.NewTrainingRepository(store).LoadSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotEmpty(t, sessions[0].ID)
	assert.False(t, sessions[0].RecordedAt.IsZero())
}

func TestModelService_PredictRequiresTraining(t *testing.T) {
	svc, stats := newService(t, newMemStore())

	_, err := svc.Predict(sample(0))
	assert.ErrorIs(t, err, models.ErrModelNotTrained)
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.PredictionFailures.WithLabelValues("not_trained")))
}

func TestModelService_Predict(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	addSessions(t, svc, 0, 10)

	res, err := svc.Predict(sample(3))
	require.NoError(t, err)
	assert.Contains(t, []int{models.PredictionFraudulent, models.PredictionLegitimate}, res.Prediction)
	assert.GreaterOrEqual(t, res.Confidence, 0.5)
	assert.InDelta(t, 1.0, res.Probabilities.Legitimate+res.Probabilities.Fraudulent, 1e-9)
	require.NotNil(t, res.Features)
	assert.NotEmpty(t, res.RiskLevel)
	assert.False(t, res.Timestamp.IsZero())
}

func TestModelService_PredictMatchesStandaloneRisk(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	addSessions(t, svc, 0, 10)
	session := sample(4)

	res, err := svc.Predict(session)
	require.NoError(t, err)

	risk := metrics.AssessRisk(session, svc.LegitimateFeatures(), metrics.DefaultMinKeystrokes)
	assert.Equal(t, risk.Score, res.RiskScore)
	assert.Equal(t, risk.Level, res.RiskLevel)
	require.NotNil(t, res.Features)
	assert.Equal(t, metrics.ExtractFeatures(session), *res.Features)

	vec, err := svc.PredictVector(metrics.ExtractFeatures(session))
	require.NoError(t, err)
	assert.Equal(t, vec.Prediction, res.Prediction)
	assert.InDelta(t, vec.Confidence, res.Confidence, 1e-12)
}

func TestModelService_ResetThenPredict(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	ctx := context.Background()
	addSessions(t, svc, 0, 10)
	require.True(t, svc.IsReady())

	svc.Reset(ctx)
	_, err := svc.Predict(sample(1))
	assert.ErrorIs(t, err, models.ErrModelNotTrained)
	assert.Zero(t, svc.SessionCount())
	assert.Empty(t, svc.LegitimateFeatures())
	assert.False(t, store.has(repository.TrainingSessionsKey))
	assert.False(t, store.has(repository.ModelStateKey))

	// resetting an untrained service behaves the same
	svc.Reset(ctx)
	_, err = svc.Predict(sample(1))
	assert.ErrorIs(t, err, models.ErrModelNotTrained)
}

func TestModelService_RetrainIsDeterministic(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	ctx := context.Background()
	addSessions(t, svc, 0, 10)

	require.NoError(t, svc.Retrain(ctx))
	first, err := json.Marshal(svc.LegitimateFeatures())
	require.NoError(t, err)
	require.NoError(t, svc.Retrain(ctx))
	second, err := json.Marshal(svc.LegitimateFeatures())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestModelService_RetrainWithoutEnoughSessions(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	addSessions(t, svc, 0, 3)

	err := svc.Retrain(context.Background())
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.False(t, svc.Status().Trained)
}

func TestModelService_RetrainIfStale(t *testing.T) {
	svc, stats := newService(t, newMemStore())
	ctx := context.Background()

	retrained, err := svc.RetrainIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, retrained, "untrained models are left to auto-training")

	addSessions(t, svc, 0, 10)
	retrained, err = svc.RetrainIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, retrained)

	addSessions(t, svc, 10, 12)
	assert.Equal(t, 10, svc.Status().ProfileSize)
	retrained, err = svc.RetrainIfStale(ctx)
	require.NoError(t, err)
	assert.True(t, retrained)
	assert.Equal(t, 12, svc.Status().ProfileSize)
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.Trainings.WithLabelValues("scheduled")))
}

func TestModelService_PersistenceFailuresAreNotFatal(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("disk full")
	svc, stats := newService(t, store)
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.PersistenceFailures.WithLabelValues("load_sessions")))

	st := addSessions(t, svc, 0, 10)
	assert.True(t, st.Trained)
	assert.Equal(t, 10.0, testutil.ToFloat64(stats.PersistenceFailures.WithLabelValues("save_sessions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.PersistenceFailures.WithLabelValues("save_state")))

	_, err := svc.Predict(sample(2))
	assert.NoError(t, err)

	svc.Reset(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.PersistenceFailures.WithLabelValues("clear")))
	assert.Zero(t, svc.SessionCount())
}

func TestModelService_RestoresPersistedState(t *testing.T) {
	store := newMemStore()
	first, _ := newService(t, store)
	addSessions(t, first, 0, 10)
	want := first.LegitimateFeatures()

	second, _ := newService(t, store)
	st := second.Status()
	assert.Equal(t, 10, st.SessionCount)
	assert.True(t, st.Trained)
	assert.Equal(t, want, second.LegitimateFeatures())

	_, err := second.Predict(sample(4))
	assert.NoError(t, err)
}

func TestModelService_DiscardsInconsistentState(t *testing.T) {
	store := newMemStore()
	repo := repository.NewTrainingRepository(store)
	require.NoError(t, repo.SaveState(context.Background(), models.ModelState{Trained: true}))

	svc, _ := newService(t, store)
	assert.False(t, svc.Status().Trained)
}

func TestModelService_ConcurrentUse(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.AddTrainingSession(context.Background(), sample(i))
			_, _ = svc.Predict(sample(i))
			_ = svc.RealTimeRiskScore(sample(i))
		}(i)
	}
	wg.Wait()

	st := svc.Status()
	assert.Equal(t, 20, st.SessionCount)
	assert.True(t, st.Trained)
}
