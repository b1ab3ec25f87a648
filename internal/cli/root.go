package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohmanhakim/coffee-indicators/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	envFile        string
	sourceURL      string
	priceSourceURL string
	userAgent      string
	timeout        time.Duration
	cacheTTL       int64 = -1
	cacheBackend   string
	cacheCodec     string
	redisAddr      string
	sqlitePath     string
	timezone       string
	logLevel       string
	prettyLog      bool
	listenAddr     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coffee-indicators",
	Short: "Daily Colombian coffee market indicators.",
	Long: `coffee-indicators scrapes the daily coffee market indicators published
by the Colombian coffee growers federation and serves them from a cache that
refreshes itself once the publication date falls behind the calendar date.

Run a subcommand to print the current indicators or reference price, or
start the HTTP service with a background refresh schedule.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Run executes the command tree with explicit arguments and output streams.
func Run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with COFFEE_* variables, ignored when absent")
	rootCmd.PersistentFlags().StringVar(&sourceURL, "source-url", "", "page carrying the indicator modal")
	rootCmd.PersistentFlags().StringVar(&priceSourceURL, "price-source-url", "", "page carrying the highlighted reference price")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().Int64Var(&cacheTTL, "cache-ttl", -1, "seconds before a cached entry may be evicted (0 keeps entries forever)")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache-backend", "", "cache backend: memory, redis or sqlite")
	rootCmd.PersistentFlags().StringVar(&cacheCodec, "cache-codec", "", "stored encoding for redis and sqlite: json or msgpack")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "redis address (host:port)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "", "sqlite database file")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA timezone in which today is evaluated")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty-log", false, "human-readable console logs")

	rootCmd.AddCommand(indicatorsCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile exports the variables of a dotenv file without overriding the process environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// InitConfigWithError builds the effective config, returning any errors.
// A config file is used as-is; otherwise defaults are overridden by
// COFFEE_* environment variables and then by CLI flags.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder, err := config.WithDefault().WithEnv(os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	// Override with CLI flag values where provided
	if sourceURL != "" {
		u, err := parseURLFlag("source-url", sourceURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithSourceURL(u)
	}

	if priceSourceURL != "" {
		u, err := parseURLFlag("price-source-url", priceSourceURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithPriceSourceURL(u)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if cacheTTL >= 0 {
		configBuilder = configBuilder.WithCacheTTLSeconds(uint64(cacheTTL))
	}

	if cacheBackend != "" {
		configBuilder = configBuilder.WithCacheBackend(config.CacheBackend(cacheBackend))
	}

	if cacheCodec != "" {
		configBuilder = configBuilder.WithCacheCodec(cacheCodec)
	}

	if redisAddr != "" {
		configBuilder = configBuilder.WithRedisAddr(redisAddr)
	}

	if sqlitePath != "" {
		configBuilder = configBuilder.WithSQLitePath(sqlitePath)
	}

	if timezone != "" {
		configBuilder = configBuilder.WithTimezone(timezone)
	}

	if logLevel != "" {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: log-level: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithLogLevel(level)
	}

	if prettyLog {
		configBuilder = configBuilder.WithPrettyLog(prettyLog)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	return configBuilder.Build()
}

func parseURLFlag(name string, raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: %s: %s", config.ErrInvalidConfig, name, err.Error())
	}
	return *u, nil
}

func ResetFlags() {
	cfgFile = ""
	envFile = ""
	sourceURL = ""
	priceSourceURL = ""
	userAgent = ""
	timeout = 0
	cacheTTL = -1
	cacheBackend = ""
	cacheCodec = ""
	redisAddr = ""
	sqlitePath = ""
	timezone = ""
	logLevel = ""
	prettyLog = false
	listenAddr = ""
	outputFormat = "text"
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSourceURLForTest(u string) {
	sourceURL = u
}

func SetPriceSourceURLForTest(u string) {
	priceSourceURL = u
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetCacheTTLForTest(ttl int64) {
	cacheTTL = ttl
}

func SetCacheBackendForTest(backend string) {
	cacheBackend = backend
}

func SetCacheCodecForTest(codec string) {
	cacheCodec = codec
}

func SetRedisAddrForTest(addr string) {
	redisAddr = addr
}

func SetSQLitePathForTest(path string) {
	sqlitePath = path
}

func SetTimezoneForTest(tz string) {
	timezone = tz
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}
