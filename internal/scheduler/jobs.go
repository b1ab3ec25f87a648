package scheduler

import (
	"context"

	"github.com/rohmanhakim/coffee-indicators/internal/cache"
	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rs/zerolog"
)

// IndicatorsGetter is the retrieval entry point a RefreshJob drives.
type IndicatorsGetter interface {
	GetIndicators(ctx context.Context) (market.CoffeeMarketIndicators, error)
}

// RefreshJob keeps the indicators cache warm. Once today's record is cached
// a run costs one cache read and no upstream fetch.
type RefreshJob struct {
	retriever IndicatorsGetter
	log       zerolog.Logger
}

func NewRefreshJob(retriever IndicatorsGetter, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		retriever: retriever,
		log:       log.With().Str("job", "indicators_refresh").Logger(),
	}
}

func (j *RefreshJob) Run(ctx context.Context) error {
	indicators, err := j.retriever.GetIndicators(ctx)
	if err != nil {
		return err
	}
	j.log.Debug().
		Str("publication_date", indicators.PublicationDate().String()).
		Msg("Indicators current")
	return nil
}

func (j *RefreshJob) Name() string {
	return "indicators_refresh"
}

// CleanupJob sweeps expired entries from backends that keep them until deleted.
type CleanupJob struct {
	expirer cache.Expirer
	log     zerolog.Logger
}

func NewCleanupJob(expirer cache.Expirer, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		expirer: expirer,
		log:     log.With().Str("job", "cache_cleanup").Logger(),
	}
}

func (j *CleanupJob) Run(ctx context.Context) error {
	deleted, err := j.expirer.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}
	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Cleaned up expired cache entries")
	}
	return nil
}

func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
