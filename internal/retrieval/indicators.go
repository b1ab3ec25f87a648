package retrieval

import (
	"context"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/cache"
	"github.com/rohmanhakim/coffee-indicators/internal/clock"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
)

/*
Responsibilities
- Serve the market indicators from cache while they are current
- Refresh from the publisher when the cache is empty or out of date
- Write every refreshed record back before returning it

Freshness

A cached record is fresh only when its publication date equals the clock's
today. Any other date, earlier or later, triggers a refresh. Backend TTL
eviction is independent of this check.

Failure Semantics
- Every failure is returned to the caller; nothing is retried
- A failed refresh leaves the cache untouched and never falls back to the stale record
- A failed write after a successful refresh fails the call

Concurrent calls are not coalesced; each may refresh, and the last write wins.
*/

// IndicatorsProvider fetches the current indicators from the upstream source.
type IndicatorsProvider interface {
	FetchAndExtract(ctx context.Context) (market.CoffeeMarketIndicators, failure.ClassifiedError)
}

type MarketIndicatorsRetriever struct {
	provider     IndicatorsProvider
	cache        cache.Repository[market.CoffeeMarketIndicators]
	clock        clock.Clock
	ttlSeconds   uint64
	metadataSink metadata.MetadataSink
}

func NewMarketIndicatorsRetriever(
	provider IndicatorsProvider,
	repo cache.Repository[market.CoffeeMarketIndicators],
	clk clock.Clock,
	ttlSeconds uint64,
	metadataSink metadata.MetadataSink,
) *MarketIndicatorsRetriever {
	return &MarketIndicatorsRetriever{
		provider:     provider,
		cache:        repo,
		clock:        clk,
		ttlSeconds:   ttlSeconds,
		metadataSink: metadataSink,
	}
}

// GetIndicators returns today's indicators. Errors are *RetrievalError.
func (r *MarketIndicatorsRetriever) GetIndicators(ctx context.Context) (market.CoffeeMarketIndicators, error) {
	cached, found, err := r.cache.Get(ctx, MarketIndicatorsCacheKey)
	if err != nil {
		return market.CoffeeMarketIndicators{}, r.fail("MarketIndicatorsRetriever.GetIndicators", &RetrievalError{
			Message: "reading cached indicators",
			Cause:   ErrCauseCacheRead,
			Err:     err,
		})
	}

	if found {
		today := r.clock.Today()
		outcome := freshness(cached, today)
		r.metadataSink.RecordCacheLookup(MarketIndicatorsCacheKey, outcome, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrDate, cached.PublicationDate().String()),
			metadata.NewAttr(metadata.AttrToday, today.String()),
		})
		if outcome == metadata.CacheOutcomeFresh {
			return cached, nil
		}
	} else {
		r.metadataSink.RecordCacheLookup(MarketIndicatorsCacheKey, metadata.CacheOutcomeMiss, nil)
	}

	return r.refresh(ctx)
}

func (r *MarketIndicatorsRetriever) refresh(ctx context.Context) (market.CoffeeMarketIndicators, error) {
	indicators, extractErr := r.provider.FetchAndExtract(ctx)
	if extractErr != nil {
		return market.CoffeeMarketIndicators{}, r.fail("MarketIndicatorsRetriever.refresh", &RetrievalError{
			Message: "refreshing indicators from source",
			Cause:   ErrCauseExtraction,
			Err:     extractErr,
		})
	}

	if err := r.cache.Set(ctx, MarketIndicatorsCacheKey, indicators, r.ttlSeconds); err != nil {
		return market.CoffeeMarketIndicators{}, r.fail("MarketIndicatorsRetriever.refresh", &RetrievalError{
			Message: "storing refreshed indicators",
			Cause:   ErrCauseCacheWrite,
			Err:     err,
		})
	}

	r.metadataSink.RecordRefresh(MarketIndicatorsCacheKey, indicators.PublicationDate().String())
	return indicators, nil
}

func (r *MarketIndicatorsRetriever) fail(action string, err *RetrievalError) error {
	recordRetrievalError(r.metadataSink, action, MarketIndicatorsCacheKey, err)
	return err
}

func freshness(cached market.CoffeeMarketIndicators, today timeutil.Date) metadata.CacheOutcome {
	switch {
	case cached.IsPublishedOn(today):
		return metadata.CacheOutcomeFresh
	case cached.PublicationDate().After(today):
		return metadata.CacheOutcomeFutureDated
	default:
		return metadata.CacheOutcomeStale
	}
}

func recordRetrievalError(sink metadata.MetadataSink, action string, key string, err *RetrievalError) {
	sink.RecordError(
		time.Now(),
		"retrieval",
		action,
		mapRetrievalErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, key),
		},
	)
}
