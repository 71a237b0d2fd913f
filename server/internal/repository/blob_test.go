package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maasir554/fingertail/server/internal/database"
)

func newGormStore(t *testing.T) *GormBlobStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return NewGormBlobStore(db)
}

func newRedisStore(t *testing.T) (*RedisBlobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBlobStore(client, "test:"), mr
}

func TestBlobStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]BlobStore{
		"gorm":  newGormStore(t),
		"redis": redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrBlobNotFound)

			require.NoError(t, store.Save(ctx, "k", []byte("first")))
			got, err := store.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), got)

			require.NoError(t, store.Save(ctx, "k", []byte("second")))
			got, err = store.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got)

			require.NoError(t, store.Delete(ctx, "k"))
			_, err = store.Load(ctx, "k")
			assert.ErrorIs(t, err, ErrBlobNotFound)

			// deleting an absent key is not an error
			assert.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestRedisBlobStore_Prefix(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, store.Save(context.Background(), "model_state", []byte("{}")))

	v, err := mr.Get("test:model_state")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestRedisBlobStore_ServerDown(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
}
