package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by WithEnv.
const (
	EnvSourceURL       = "COFFEE_SOURCE_URL"
	EnvPriceSourceURL  = "COFFEE_PRICE_SOURCE_URL"
	EnvUserAgent       = "COFFEE_USER_AGENT"
	EnvTimeout         = "COFFEE_TIMEOUT"
	EnvCacheTTLSeconds = "COFFEE_CACHE_TTL_SECONDS"
	EnvCacheBackend    = "COFFEE_CACHE_BACKEND"
	EnvCacheCodec      = "COFFEE_CACHE_CODEC"
	EnvRedisAddr       = "COFFEE_REDIS_ADDR"
	EnvRedisPassword   = "COFFEE_REDIS_PASSWORD"
	EnvRedisDB         = "COFFEE_REDIS_DB"
	EnvSQLitePath      = "COFFEE_SQLITE_PATH"
	EnvTimezone        = "COFFEE_TIMEZONE"
	EnvLogLevel        = "COFFEE_LOG_LEVEL"
	EnvPrettyLog       = "COFFEE_LOG_PRETTY"
	EnvListenAddr      = "COFFEE_LISTEN_ADDR"
	EnvAllowedOrigins  = "COFFEE_ALLOWED_ORIGINS"
	EnvRefreshSchedule = "COFFEE_REFRESH_SCHEDULE"
	EnvCleanupSchedule = "COFFEE_CLEANUP_SCHEDULE"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// WithEnv overrides c with every COFFEE_* variable that lookup reports as set and non-empty.
// Values are parsed here; cross-field validation is left to Build.
func (c *Config) WithEnv(lookup LookupFunc) (*Config, error) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvSourceURL); ok {
		u, err := url.Parse(v)
		if err != nil {
			return c, envError(EnvSourceURL, err)
		}
		c.sourceURL = *u
	}
	if v, ok := get(EnvPriceSourceURL); ok {
		u, err := url.Parse(v)
		if err != nil {
			return c, envError(EnvPriceSourceURL, err)
		}
		c.priceSourceURL = *u
	}
	if v, ok := get(EnvUserAgent); ok {
		c.userAgent = v
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, envError(EnvTimeout, err)
		}
		c.timeout = d
	}
	if v, ok := get(EnvCacheTTLSeconds); ok {
		ttl, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c, envError(EnvCacheTTLSeconds, err)
		}
		c.cacheTTLSeconds = ttl
	}
	if v, ok := get(EnvCacheBackend); ok {
		c.cacheBackend = CacheBackend(strings.ToLower(v))
	}
	if v, ok := get(EnvCacheCodec); ok {
		c.cacheCodec = strings.ToLower(v)
	}
	if v, ok := get(EnvRedisAddr); ok {
		c.redisAddr = v
	}
	if v, ok := get(EnvRedisPassword); ok {
		c.redisPassword = v
	}
	if v, ok := get(EnvRedisDB); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return c, envError(EnvRedisDB, err)
		}
		c.redisDB = db
	}
	if v, ok := get(EnvSQLitePath); ok {
		c.sqlitePath = v
	}
	if v, ok := get(EnvTimezone); ok {
		c.timezone = v
	}
	if v, ok := get(EnvLogLevel); ok {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return c, envError(EnvLogLevel, err)
		}
		c.logLevel = level
	}
	if v, ok := get(EnvPrettyLog); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return c, envError(EnvPrettyLog, err)
		}
		c.prettyLog = pretty
	}
	if v, ok := get(EnvListenAddr); ok {
		c.listenAddr = v
	}
	if v, ok := get(EnvAllowedOrigins); ok {
		c.allowedOrigins = splitList(v)
	}
	if v, ok := get(EnvRefreshSchedule); ok {
		c.refreshSchedule = v
	}
	if v, ok := get(EnvCleanupSchedule); ok {
		c.cleanupSchedule = v
	}
	return c, nil
}

func envError(key string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, key, err.Error())
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
