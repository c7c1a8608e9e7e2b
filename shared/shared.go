package shared

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"innkeeper/shared/cache"
	"innkeeper/shared/constant"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

// BuildCacheKey joins cache key segments with the conventional separator.
func BuildCacheKey(segments ...string) string {
	return strings.Join(segments, ":")
}

// InvalidateCaches clears every cache entry under the given key prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+"*"); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// TenantFromContext returns the authenticated tenant id placed in the context
// by the auth middleware. Tenant scoping only ever originates here, never from
// request payloads.
func TenantFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	return tenantID
}
