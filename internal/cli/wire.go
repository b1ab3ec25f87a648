package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rohmanhakim/coffee-indicators/internal/cache"
	"github.com/rohmanhakim/coffee-indicators/internal/clock"
	"github.com/rohmanhakim/coffee-indicators/internal/config"
	"github.com/rohmanhakim/coffee-indicators/internal/extractor"
	"github.com/rohmanhakim/coffee-indicators/internal/fetcher"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/internal/retrieval"
	"github.com/rohmanhakim/coffee-indicators/pkg/logger"
	"github.com/rs/zerolog"
)

// app is the assembled dependency graph shared by every subcommand.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	recorder   *metadata.Recorder
	indicators *retrieval.MarketIndicatorsRetriever
	price      *retrieval.PriceRetriever
	// nil when the backend evicts on its own
	expirer cache.Expirer
	closers []io.Closer
}

// newApp wires the retrieval use cases. Logs go to logOut; stdout stays free for command output.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel().String(),
		Pretty: cfg.PrettyLog(),
		Output: logOut,
	})
	recorder := metadata.NewRecorder(uuid.NewString(), log)

	realClock := clockwork.NewRealClock()
	today := clock.NewSystemClock(realClock, cfg.Location())

	htmlFetcher := fetcher.NewHtmlFetcher(recorder, fetcher.NewHttpClient(cfg.Timeout()))
	indicatorsExtractor := extractor.NewMarketExtractor(htmlFetcher, recorder, cfg.SourceURL(), cfg.UserAgent())
	priceExtractor := extractor.NewPriceExtractor(htmlFetcher, recorder, today, cfg.PriceSourceURL(), cfg.UserAgent())

	a := &app{
		cfg:      cfg,
		log:      log,
		recorder: recorder,
	}

	indicatorsRepo, priceRepo, err := a.openRepositories(ctx, realClock)
	if err != nil {
		return nil, err
	}

	a.indicators = retrieval.NewMarketIndicatorsRetriever(
		indicatorsExtractor,
		indicatorsRepo,
		today,
		cfg.CacheTTLSeconds(),
		recorder,
	)
	a.price = retrieval.NewPriceRetriever(
		priceExtractor,
		priceRepo,
		cfg.CacheTTLSeconds(),
		recorder,
	)

	log.Debug().
		Str("worker_id", recorder.WorkerId()).
		Str("cache_backend", string(cfg.CacheBackend())).
		Str("timezone", cfg.Timezone()).
		Msg("Application wired")

	return a, nil
}

func (a *app) openRepositories(
	ctx context.Context,
	clk clockwork.Clock,
) (cache.Repository[market.CoffeeMarketIndicators], cache.Repository[market.CoffeePrice], error) {
	switch a.cfg.CacheBackend() {
	case config.BackendRedis:
		store, err := cache.NewRedisStore(ctx, a.cfg.Redis())
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store)
		return encodedRepositories(store, a.cfg.CacheCodec(), a.recorder)

	case config.BackendSQLite:
		store, err := cache.OpenSQLiteStore(ctx, a.cfg.SQLitePath(), clk)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store)
		a.expirer = store
		return encodedRepositories(store, a.cfg.CacheCodec(), a.recorder)

	default:
		indicators := cache.NewMemoryCache[market.CoffeeMarketIndicators](clk)
		price := cache.NewMemoryCache[market.CoffeePrice](clk)
		a.expirer = expirers{indicators, price}
		return indicators, price, nil
	}
}

func encodedRepositories(
	store cache.ByteStore,
	codecName string,
	sink metadata.MetadataSink,
) (cache.Repository[market.CoffeeMarketIndicators], cache.Repository[market.CoffeePrice], error) {
	indicatorsCodec, ok := cache.CodecFor[market.CoffeeMarketIndicators](codecName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown cache codec %q", config.ErrInvalidConfig, codecName)
	}
	priceCodec, _ := cache.CodecFor[market.CoffeePrice](codecName)

	return cache.NewEncodedRepository(store, indicatorsCodec, sink),
		cache.NewEncodedRepository(store, priceCodec, sink),
		nil
}

// Close releases backend connections in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// expirers sweeps several in-memory caches as one.
type expirers []cache.Expirer

func (e expirers) DeleteExpired(ctx context.Context) (int64, error) {
	var total int64
	for _, expirer := range e {
		n, err := expirer.DeleteExpired(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
