// Package cache provides caching implementations for client interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vision_backend/internal/feature/tencent/adapters/tiia/dto"
	"vision_backend/internal/feature/tencent/usecase"
)

// CachingTIIAClient decorates a TIIAClient with Redis caching.
// Label lookups for the same image always yield the same result, so
// responses are cached keyed by the SHA-256 digest of the image payload.
type CachingTIIAClient struct {
	inner     usecase.TIIAClient
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.TIIAClient = (*CachingTIIAClient)(nil)

// NewCachingTIIAClient decorates a TIIAClient with Redis caching.
// If ttl is 0, it defaults to 1 hour. If namespace is empty, it uses "tiia".
func NewCachingTIIAClient(rdb *redis.Client, ttl time.Duration, inner usecase.TIIAClient, namespace string) *CachingTIIAClient {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if namespace == "" {
		namespace = "tiia"
	}
	return &CachingTIIAClient{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// cacheKey generates a cache key for an operation over one image.
func (c *CachingTIIAClient) cacheKey(op, imageBase64 string) string {
	digest := sha256.Sum256([]byte(imageBase64))
	return fmt.Sprintf("%s:%s:%s", c.namespace, op, hex.EncodeToString(digest[:]))
}

// lookup runs fetch with a cache in front of it, decoding into out.
func lookup[T any](ctx context.Context, c *CachingTIIAClient, key string, fetch func() (*T, error)) (*T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return fetch()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the vendor
	out, err := fetch()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// DetectLabel serves camera-scene label lookups through the cache.
func (c *CachingTIIAClient) DetectLabel(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error) {
	return lookup(ctx, c, c.cacheKey("detect", imageBase64), func() (*dto.DetectLabelResponse, error) {
		return c.inner.DetectLabel(ctx, imageBase64)
	})
}

// DetectLabelPro serves high-accuracy label lookups through the cache.
func (c *CachingTIIAClient) DetectLabelPro(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error) {
	return lookup(ctx, c, c.cacheKey("pro", imageBase64), func() (*dto.DetectLabelResponse, error) {
		return c.inner.DetectLabelPro(ctx, imageBase64)
	})
}

// RecognizeCar serves car recognition lookups through the cache.
func (c *CachingTIIAClient) RecognizeCar(ctx context.Context, imageBase64 string) (*dto.RecognizeCarResponse, error) {
	return lookup(ctx, c, c.cacheKey("car", imageBase64), func() (*dto.RecognizeCarResponse, error) {
		return c.inner.RecognizeCar(ctx, imageBase64)
	})
}
