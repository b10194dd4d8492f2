package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

const catalogKeyPrefix = "catalog:"

// CatalogCacheRepository caches catalog responses in Redis as JSON.
type CatalogCacheRepository struct {
	client *redis.Client
	exp    time.Duration // time to live of every entry
}

// NewCatalogCacheRepository creates a cache whose entries expire after expiration.
func NewCatalogCacheRepository(client *redis.Client, expiration time.Duration) *CatalogCacheRepository {
	return &CatalogCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// GetPage returns the cached page for key, or nil on a miss.
func (r *CatalogCacheRepository) GetPage(ctx context.Context, key string) (*models.CatalogPage, error) {
	var page models.CatalogPage
	ok, err := r.get(ctx, key, &page)
	if err != nil || !ok {
		return nil, err
	}
	return &page, nil
}

// SetPage stores page under key.
func (r *CatalogCacheRepository) SetPage(ctx context.Context, key string, page *models.CatalogPage) error {
	return r.set(ctx, key, page)
}

// GetVideo returns the cached video for key, or nil on a miss.
func (r *CatalogCacheRepository) GetVideo(ctx context.Context, key string) (*models.Video, error) {
	var video models.Video
	ok, err := r.get(ctx, key, &video)
	if err != nil || !ok {
		return nil, err
	}
	return &video, nil
}

// SetVideo stores video under key.
func (r *CatalogCacheRepository) SetVideo(ctx context.Context, key string, video *models.Video) error {
	return r.set(ctx, key, video)
}

func (r *CatalogCacheRepository) get(ctx context.Context, key string, dest any) (bool, error) {
	key = catalogKeyPrefix + key

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Log.Debugw("catalog cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		logger.Log.Warnw("catalog cache read failed", "key", key, "error", err)
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		logger.Log.Warnw("catalog cache entry is corrupt", "key", key, "error", err)
		return false, err
	}

	logger.Log.Debugw("catalog cache hit", "key", key, "size", len(val))
	return true, nil
}

func (r *CatalogCacheRepository) set(ctx context.Context, key string, value any) error {
	key = catalogKeyPrefix + key

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()
	logger.Log.Debugw("catalog cache write", "key", key, "ttl", r.exp, "error", err)
	return err
}
