package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/redis_client"
)

const cacheMissValue = "N/A"

// CachedGeocoder remembers both hits and misses of the wrapped geocoder
type CachedGeocoder struct {
	Geocoder Geocoder
	Cache    *cache.Cache[string]
}

func (c *CachedGeocoder) Setup() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(30*24*time.Hour))

	c.Cache = cache.New[string](redisStore)
}

func (c *CachedGeocoder) Geocode(ctx context.Context, station string) *ctdf.Location {
	cacheKey := fmt.Sprintf("GEOCODE:%s", station)

	cacheValue, err := c.Cache.Get(ctx, cacheKey)
	if err == nil && cacheValue != "" {
		if cacheValue == cacheMissValue {
			return nil
		}

		var location *ctdf.Location
		if err := json.Unmarshal([]byte(cacheValue), &location); err == nil {
			return location
		}
	}

	location := c.Geocoder.Geocode(ctx, station)

	if location == nil {
		err = c.Cache.Set(ctx, cacheKey, cacheMissValue, store.WithExpiration(time.Hour))
	} else {
		locationJSON, _ := json.Marshal(location)
		err = c.Cache.Set(ctx, cacheKey, string(locationJSON))
	}
	if err != nil {
		log.Debug().Err(err).Str("station", station).Msg("Failed to cache geocode")
	}

	return location
}
