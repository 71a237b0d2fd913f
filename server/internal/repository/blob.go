// Package repository persists the training log and model state as opaque
// blobs behind a small load/save interface.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maasir554/fingertail/server/internal/models"
)

// ErrBlobNotFound is returned by Load when nothing is stored under a key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the key/value persistence the model service reads and writes.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GormBlobStore keeps blobs in a single table through GORM.
type GormBlobStore struct {
	db *gorm.DB
}

func NewGormBlobStore(db *gorm.DB) *GormBlobStore {
	return &GormBlobStore{db: db}
}

func (s *GormBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob models.Blob
	err := s.db.WithContext(ctx).First(&blob, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob.Value, nil
}

func (s *GormBlobStore) Save(ctx context.Context, key string, value []byte) error {
	blob := models.Blob{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
}

func (s *GormBlobStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&models.Blob{}, "name = ?", key).Error
}
