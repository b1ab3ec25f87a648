package retrieval

import (
	"context"

	"github.com/rohmanhakim/coffee-indicators/internal/cache"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

// PriceProvider fetches the highlighted reference price.
type PriceProvider interface {
	FetchPrice(ctx context.Context) (market.CoffeePrice, failure.ClassifiedError)
}

// PriceRetriever is plain cache-aside: any cached price is returned until the
// backend evicts it by TTL.
type PriceRetriever struct {
	provider     PriceProvider
	cache        cache.Repository[market.CoffeePrice]
	ttlSeconds   uint64
	metadataSink metadata.MetadataSink
}

func NewPriceRetriever(
	provider PriceProvider,
	repo cache.Repository[market.CoffeePrice],
	ttlSeconds uint64,
	metadataSink metadata.MetadataSink,
) *PriceRetriever {
	return &PriceRetriever{
		provider:     provider,
		cache:        repo,
		ttlSeconds:   ttlSeconds,
		metadataSink: metadataSink,
	}
}

// GetPrice returns the cached price or fetches and caches a new one. Errors are *RetrievalError.
func (r *PriceRetriever) GetPrice(ctx context.Context) (market.CoffeePrice, error) {
	cached, found, err := r.cache.Get(ctx, CoffeePriceCacheKey)
	if err != nil {
		return market.CoffeePrice{}, r.fail("PriceRetriever.GetPrice", &RetrievalError{
			Message: "reading cached price",
			Cause:   ErrCauseCacheRead,
			Err:     err,
		})
	}
	if found {
		r.metadataSink.RecordCacheLookup(CoffeePriceCacheKey, metadata.CacheOutcomeHit, nil)
		return cached, nil
	}
	r.metadataSink.RecordCacheLookup(CoffeePriceCacheKey, metadata.CacheOutcomeMiss, nil)

	price, fetchErr := r.provider.FetchPrice(ctx)
	if fetchErr != nil {
		return market.CoffeePrice{}, r.fail("PriceRetriever.GetPrice", &RetrievalError{
			Message: "fetching price from source",
			Cause:   ErrCauseExtraction,
			Err:     fetchErr,
		})
	}

	if err := r.cache.Set(ctx, CoffeePriceCacheKey, price, r.ttlSeconds); err != nil {
		return market.CoffeePrice{}, r.fail("PriceRetriever.GetPrice", &RetrievalError{
			Message: "storing fetched price",
			Cause:   ErrCauseCacheWrite,
			Err:     err,
		})
	}

	r.metadataSink.RecordRefresh(CoffeePriceCacheKey, price.Date().String())
	return price, nil
}

func (r *PriceRetriever) fail(action string, err *RetrievalError) error {
	recordRetrievalError(r.metadataSink, action, CoffeePriceCacheKey, err)
	return err
}
