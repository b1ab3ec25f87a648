package extractor

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/clock"
	"github.com/rohmanhakim/coffee-indicators/internal/fetcher"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

// DefaultSourceURL is the publisher page carrying both the indicator modal and the highlighted price.
const DefaultSourceURL = "https://federaciondecafeteros.org/wp/"

// MarketExtractor performs one fetch of the source page and parses the indicators.
// It holds no state between calls and never caches.
type MarketExtractor struct {
	fetcher      fetcher.Fetcher
	metadataSink metadata.MetadataSink
	fetchParam   fetcher.FetchParam
}

func NewMarketExtractor(
	f fetcher.Fetcher,
	metadataSink metadata.MetadataSink,
	sourceUrl url.URL,
	userAgent string,
) *MarketExtractor {
	return &MarketExtractor{
		fetcher:      f,
		metadataSink: metadataSink,
		fetchParam:   fetcher.NewFetchParam(sourceUrl, userAgent),
	}
}

// FetchAndExtract returns a *fetcher.FetchError when the page cannot be retrieved
// and an *ExtractionError when it cannot be read.
func (m *MarketExtractor) FetchAndExtract(ctx context.Context) (market.CoffeeMarketIndicators, failure.ClassifiedError) {
	result, fetchErr := m.fetcher.Fetch(ctx, m.fetchParam)
	if fetchErr != nil {
		return market.CoffeeMarketIndicators{}, fetchErr
	}

	indicators, err := ParseIndicators(result.Body())
	if err != nil {
		recordExtractionError(m.metadataSink, "MarketExtractor.FetchAndExtract", m.fetchParam.URL(), err)
		return market.CoffeeMarketIndicators{}, err
	}
	return indicators, nil
}

// PriceExtractor fetches the highlighted price and dates it with the clock,
// since the price element carries no date of its own.
type PriceExtractor struct {
	fetcher      fetcher.Fetcher
	metadataSink metadata.MetadataSink
	clock        clock.Clock
	fetchParam   fetcher.FetchParam
}

func NewPriceExtractor(
	f fetcher.Fetcher,
	metadataSink metadata.MetadataSink,
	c clock.Clock,
	sourceUrl url.URL,
	userAgent string,
) *PriceExtractor {
	return &PriceExtractor{
		fetcher:      f,
		metadataSink: metadataSink,
		clock:        c,
		fetchParam:   fetcher.NewFetchParam(sourceUrl, userAgent),
	}
}

func (p *PriceExtractor) FetchPrice(ctx context.Context) (market.CoffeePrice, failure.ClassifiedError) {
	result, fetchErr := p.fetcher.Fetch(ctx, p.fetchParam)
	if fetchErr != nil {
		return market.CoffeePrice{}, fetchErr
	}

	value, err := ParsePrice(result.Body())
	if err != nil {
		recordExtractionError(p.metadataSink, "PriceExtractor.FetchPrice", p.fetchParam.URL(), err)
		return market.CoffeePrice{}, err
	}

	price, priceErr := market.NewCoffeePrice(value, p.clock.Today())
	if priceErr != nil {
		extractionErr := &ExtractionError{
			Message: priceErr.Error(),
			Cause:   ErrCauseInvalidRecord,
			Field:   FieldPrice,
		}
		recordExtractionError(p.metadataSink, "PriceExtractor.FetchPrice", p.fetchParam.URL(), extractionErr)
		return market.CoffeePrice{}, extractionErr
	}
	return price, nil
}

func recordExtractionError(sink metadata.MetadataSink, action string, sourceUrl url.URL, err failure.ClassifiedError) {
	var extractionError *ExtractionError
	if !errors.As(err, &extractionError) {
		return
	}
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
	}
	if extractionError.Field != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrField, extractionError.Field))
	}
	sink.RecordError(
		time.Now(),
		"extractor",
		action,
		mapExtractionErrorToMetadataCause(extractionError),
		err.Error(),
		attrs,
	)
}
