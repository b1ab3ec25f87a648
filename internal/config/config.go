package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rohmanhakim/coffee-indicators/internal/build"
	"github.com/rohmanhakim/coffee-indicators/internal/cache"
	"github.com/rohmanhakim/coffee-indicators/internal/clock"
	"github.com/rohmanhakim/coffee-indicators/internal/extractor"
	"github.com/rohmanhakim/coffee-indicators/internal/retrieval"
	"github.com/rs/zerolog"
)

type CacheBackend string

const (
	BackendMemory CacheBackend = "memory"
	BackendRedis  CacheBackend = "redis"
	BackendSQLite CacheBackend = "sqlite"
)

// scheduleParser accepts the six-field (seconds first) format the scheduler runs with.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Config struct {
	//===============
	// Source
	//===============
	// Page carrying the indicator modal
	sourceURL url.URL
	// Page carrying the highlighted reference price
	priceSourceURL url.URL
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Maximum time of a single fetch request
	timeout time.Duration

	//===============
	// Cache
	//===============
	// Seconds after which the backend may evict an entry. 0 disables eviction
	cacheTTLSeconds uint64
	cacheBackend    CacheBackend
	// Stored encoding for redis and sqlite backends
	cacheCodec    string
	redisAddr     string
	redisPassword string
	redisDB       int
	sqlitePath    string

	//===============
	// Time
	//===============
	// IANA zone in which "today" is evaluated
	timezone string
	location *time.Location

	//===============
	// Logging
	//===============
	logLevel  zerolog.Level
	prettyLog bool

	//===============
	// Serve
	//===============
	listenAddr      string
	allowedOrigins  []string
	refreshSchedule string
	cleanupSchedule string
}

type configDTO struct {
	SourceURL       string   `json:"sourceUrl,omitempty"`
	PriceSourceURL  string   `json:"priceSourceUrl,omitempty"`
	UserAgent       string   `json:"userAgent,omitempty"`
	Timeout         string   `json:"timeout,omitempty"`
	CacheTTLSeconds *uint64  `json:"cacheTtlSeconds,omitempty"`
	CacheBackend    string   `json:"cacheBackend,omitempty"`
	CacheCodec      string   `json:"cacheCodec,omitempty"`
	RedisAddr       string   `json:"redisAddr,omitempty"`
	RedisPassword   string   `json:"redisPassword,omitempty"`
	RedisDB         int      `json:"redisDb,omitempty"`
	SQLitePath      string   `json:"sqlitePath,omitempty"`
	Timezone        string   `json:"timezone,omitempty"`
	LogLevel        string   `json:"logLevel,omitempty"`
	PrettyLog       bool     `json:"prettyLog,omitempty"`
	ListenAddr      string   `json:"listenAddr,omitempty"`
	AllowedOrigins  []string `json:"allowedOrigins,omitempty"`
	RefreshSchedule string   `json:"refreshSchedule,omitempty"`
	CleanupSchedule string   `json:"cleanupSchedule,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	// only override fields the file sets
	if dto.SourceURL != "" {
		u, err := parseSourceURL("sourceUrl", dto.SourceURL)
		if err != nil {
			return Config{}, err
		}
		cfg.sourceURL = u
	}
	if dto.PriceSourceURL != "" {
		u, err := parseSourceURL("priceSourceUrl", dto.PriceSourceURL)
		if err != nil {
			return Config{}, err
		}
		cfg.priceSourceURL = u
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.Timeout != "" {
		timeout, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: timeout: %s", ErrInvalidConfig, err.Error())
		}
		cfg.timeout = timeout
	}
	// TTL 0 is meaningful, so only an absent key keeps the default
	if dto.CacheTTLSeconds != nil {
		cfg.cacheTTLSeconds = *dto.CacheTTLSeconds
	}
	if dto.CacheBackend != "" {
		cfg.cacheBackend = CacheBackend(dto.CacheBackend)
	}
	if dto.CacheCodec != "" {
		cfg.cacheCodec = dto.CacheCodec
	}
	if dto.RedisAddr != "" {
		cfg.redisAddr = dto.RedisAddr
	}
	if dto.RedisPassword != "" {
		cfg.redisPassword = dto.RedisPassword
	}
	if dto.RedisDB != 0 {
		cfg.redisDB = dto.RedisDB
	}
	if dto.SQLitePath != "" {
		cfg.sqlitePath = dto.SQLitePath
	}
	if dto.Timezone != "" {
		cfg.timezone = dto.Timezone
	}
	if dto.LogLevel != "" {
		level, err := zerolog.ParseLevel(dto.LogLevel)
		if err != nil {
			return Config{}, fmt.Errorf("%w: logLevel: %s", ErrInvalidConfig, err.Error())
		}
		cfg.logLevel = level
	}
	cfg.prettyLog = dto.PrettyLog
	if dto.ListenAddr != "" {
		cfg.listenAddr = dto.ListenAddr
	}
	if len(dto.AllowedOrigins) > 0 {
		cfg.allowedOrigins = dto.AllowedOrigins
	}
	if dto.RefreshSchedule != "" {
		cfg.refreshSchedule = dto.RefreshSchedule
	}
	if dto.CleanupSchedule != "" {
		cfg.cleanupSchedule = dto.CleanupSchedule
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a Config pointing at the publisher's home page with an in-memory cache.
func WithDefault() *Config {
	source, _ := url.Parse(extractor.DefaultSourceURL)
	defaultConfig := Config{
		sourceURL:       *source,
		priceSourceURL:  *source,
		userAgent:       build.UserAgent(),
		timeout:         10 * time.Second,
		cacheTTLSeconds: retrieval.DefaultTTLSeconds,
		cacheBackend:    BackendMemory,
		cacheCodec:      cache.CodecJSON,
		redisAddr:       cache.DefaultRedisConfig().Addr,
		redisDB:         0,
		sqlitePath:      "data/cache.db",
		timezone:        clock.DefaultLocation,
		logLevel:        zerolog.InfoLevel,
		prettyLog:       false,
		listenAddr:      ":8080",
		allowedOrigins:  []string{"*"},
		// every 15 minutes; a fresh cache makes each run a single cache read
		refreshSchedule: "0 */15 * * * *",
		cleanupSchedule: "0 30 3 * * *",
	}
	return &defaultConfig
}

func (c *Config) WithSourceURL(u url.URL) *Config {
	c.sourceURL = u
	return c
}

func (c *Config) WithPriceSourceURL(u url.URL) *Config {
	c.priceSourceURL = u
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithCacheTTLSeconds(ttl uint64) *Config {
	c.cacheTTLSeconds = ttl
	return c
}

func (c *Config) WithCacheBackend(backend CacheBackend) *Config {
	c.cacheBackend = backend
	return c
}

func (c *Config) WithCacheCodec(codec string) *Config {
	c.cacheCodec = codec
	return c
}

func (c *Config) WithRedis(addr string, password string, db int) *Config {
	c.redisAddr = addr
	c.redisPassword = password
	c.redisDB = db
	return c
}

func (c *Config) WithRedisAddr(addr string) *Config {
	c.redisAddr = addr
	return c
}

func (c *Config) WithSQLitePath(path string) *Config {
	c.sqlitePath = path
	return c
}

func (c *Config) WithTimezone(tz string) *Config {
	c.timezone = tz
	return c
}

func (c *Config) WithLogLevel(level zerolog.Level) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithPrettyLog(pretty bool) *Config {
	c.prettyLog = pretty
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithAllowedOrigins(origins []string) *Config {
	c.allowedOrigins = origins
	return c
}

func (c *Config) WithRefreshSchedule(schedule string) *Config {
	c.refreshSchedule = schedule
	return c
}

func (c *Config) WithCleanupSchedule(schedule string) *Config {
	c.cleanupSchedule = schedule
	return c
}

func (c *Config) Build() (Config, error) {
	if err := validateSourceURL("sourceUrl", c.sourceURL); err != nil {
		return Config{}, err
	}
	if err := validateSourceURL("priceSourceUrl", c.priceSourceURL); err != nil {
		return Config{}, err
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.timeout)
	}

	if c.cacheTTLSeconds > cache.MaxTTLSeconds {
		return Config{}, fmt.Errorf("%w: cacheTtlSeconds must be at most %d, got %d", ErrInvalidConfig, cache.MaxTTLSeconds, c.cacheTTLSeconds)
	}

	switch c.cacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.redisAddr == "" {
			return Config{}, fmt.Errorf("%w: redisAddr is required for the redis backend", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.sqlitePath == "" {
			return Config{}, fmt.Errorf("%w: sqlitePath is required for the sqlite backend", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.cacheBackend)
	}

	if c.cacheCodec != cache.CodecJSON && c.cacheCodec != cache.CodecMsgpack {
		return Config{}, fmt.Errorf("%w: unknown cache codec %q", ErrInvalidConfig, c.cacheCodec)
	}

	loc, err := clock.LoadLocation(c.timezone)
	if err != nil {
		return Config{}, fmt.Errorf("%w: timezone: %s", ErrInvalidConfig, err.Error())
	}
	c.location = loc

	if _, err := scheduleParser.Parse(c.refreshSchedule); err != nil {
		return Config{}, fmt.Errorf("%w: refreshSchedule: %s", ErrInvalidConfig, err.Error())
	}
	if _, err := scheduleParser.Parse(c.cleanupSchedule); err != nil {
		return Config{}, fmt.Errorf("%w: cleanupSchedule: %s", ErrInvalidConfig, err.Error())
	}

	return *c, nil
}

func parseSourceURL(field string, raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, err.Error())
	}
	if err := validateSourceURL(field, *u); err != nil {
		return url.URL{}, err
	}
	return *u, nil
}

func validateSourceURL(field string, u url.URL) error {
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalidConfig, field, u.String())
	}
	return nil
}

func (c Config) SourceURL() url.URL {
	return c.sourceURL
}

func (c Config) PriceSourceURL() url.URL {
	return c.priceSourceURL
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) CacheTTLSeconds() uint64 {
	return c.cacheTTLSeconds
}

func (c Config) CacheBackend() CacheBackend {
	return c.cacheBackend
}

func (c Config) CacheCodec() string {
	return c.cacheCodec
}

func (c Config) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.redisAddr,
		Password: c.redisPassword,
		DB:       c.redisDB,
	}
}

func (c Config) SQLitePath() string {
	return c.sqlitePath
}

func (c Config) Timezone() string {
	return c.timezone
}

// Location is resolved by Build; it is nil on an unbuilt Config.
func (c Config) Location() *time.Location {
	return c.location
}

func (c Config) LogLevel() zerolog.Level {
	return c.logLevel
}

func (c Config) PrettyLog() bool {
	return c.prettyLog
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) AllowedOrigins() []string {
	origins := make([]string, len(c.allowedOrigins))
	copy(origins, c.allowedOrigins)
	return origins
}

func (c Config) RefreshSchedule() string {
	return c.refreshSchedule
}

func (c Config) CleanupSchedule() string {
	return c.cleanupSchedule
}
