package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maasir554/fingertail/server/internal/config"
)

func TestInit_WritesPerLevelFiles(t *testing.T) {
	root := t.TempDir()
	log, err := Init(root, config.LoggingConfig{Directory: "logs", Level: "info", MaxSize: 1})
	require.NoError(t, err)

	log.Debug("dropped")
	log.Info("kept")
	log.Warn("warned")
	_ = log.Sync() // stdout may refuse fsync

	entries, err := os.ReadDir(filepath.Join(root, "logs"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	day := time.Now().Format("2006-01-02")
	assert.Contains(t, names, day+"-info.log")
	assert.Contains(t, names, day+"-warn.log")
	assert.NotContains(t, names, day+"-debug.log")

	info, err := os.ReadFile(filepath.Join(root, "logs", day+"-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), `"message":"kept"`)
	assert.NotContains(t, string(info), "warned")
}

func TestInit_BadLevel(t *testing.T) {
	_, err := Init(t.TempDir(), config.LoggingConfig{Directory: "logs", Level: "loud"})
	assert.Error(t, err)
}

func TestGormZapLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormZapLogger(zap.New(core))
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "missing rows are not failures")

	gl.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Statement failed", logs.All()[0].Message)
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	assert.Equal(t, "Slow statement", logs.All()[1].Message)

	silent := gl.LogMode(logger.Silent)
	silent.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}
