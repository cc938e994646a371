package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"shareit/shared/cache"
)

// BuildCacheKey joins a prefix and identifying parts into a cache key.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// BuildCacheKeyWithQuery derives a deterministic cache key from arbitrary
// query parameters by hashing their JSON form.
func BuildCacheKeyWithQuery(prefix string, params ...any) string {
	hasher := sha256.New()

	for _, param := range params {
		encoded, err := json.Marshal(param)
		if err != nil {
			continue
		}

		hasher.Write(encoded)
	}

	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hasher.Sum(nil)))
}

// InvalidateCaches clears every cache entry under the given prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
	}
}
