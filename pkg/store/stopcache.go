package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	gocachestore "github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/redis_client"
)

// CachedStopStore fronts another StopStore with a redis cache. Stops are
// immutable once created so a long expiry is safe; misses are negatively
// cached to stop repeated lookups of references that will never resolve.
type CachedStopStore struct {
	Underlying StopStore

	cache *cache.Cache[string]
}

func NewCachedStopStore(underlying StopStore) *CachedStopStore {
	redisStore := redisstore.NewRedis(redis_client.Client, gocachestore.WithExpiration(90*time.Minute))

	return &CachedStopStore{
		Underlying: underlying,
		cache:      cache.New[string](redisStore),
	}
}

func (s *CachedStopStore) Stop(ctx context.Context, identifier string) (*fdm.Stop, error) {
	cacheKey := fmt.Sprintf("stop/%s", identifier)

	stopCacheValue, err := s.cache.Get(ctx, cacheKey)
	if err == nil {
		if stopCacheValue == "N/A" {
			return nil, ErrNotFound
		}

		var stop *fdm.Stop
		json.Unmarshal([]byte(stopCacheValue), &stop)
		return stop, nil
	}

	stop, err := s.Underlying.Stop(ctx, identifier)
	if err == ErrNotFound {
		s.cache.Set(ctx, cacheKey, "N/A")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	stopJSON, _ := json.Marshal(stop)
	s.cache.Set(ctx, cacheKey, string(stopJSON))

	return stop, nil
}
