package retrieval_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type providerMock struct {
	mock.Mock
}

func (m *providerMock) FetchAndExtract(ctx context.Context) (market.CoffeeMarketIndicators, failure.ClassifiedError) {
	args := m.Called(ctx)
	err, _ := args.Get(1).(failure.ClassifiedError)
	return args.Get(0).(market.CoffeeMarketIndicators), err
}

type priceProviderMock struct {
	mock.Mock
}

func (m *priceProviderMock) FetchPrice(ctx context.Context) (market.CoffeePrice, failure.ClassifiedError) {
	args := m.Called(ctx)
	err, _ := args.Get(1).(failure.ClassifiedError)
	return args.Get(0).(market.CoffeePrice), err
}

type cacheMock[T any] struct {
	mock.Mock
}

func (m *cacheMock[T]) Get(ctx context.Context, key string) (T, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(T), args.Bool(1), args.Error(2)
}

func (m *cacheMock[T]) Set(ctx context.Context, key string, value T, ttlSeconds uint64) error {
	args := m.Called(ctx, key, value, ttlSeconds)
	return args.Error(0)
}

// sinkSpy records cache outcomes and refreshes
type sinkSpy struct {
	metadata.NoopSink
	mu          sync.Mutex
	outcomes    []metadata.CacheOutcome
	lookupAttrs [][]metadata.Attribute
	refreshes   []string
	errors      []metadata.ErrorCause
}

func (s *sinkSpy) RecordCacheLookup(key string, outcome metadata.CacheOutcome, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
	s.lookupAttrs = append(s.lookupAttrs, attrs)
}

func (s *sinkSpy) RecordRefresh(key string, publicationDate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes = append(s.refreshes, publicationDate)
}

func (s *sinkSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, cause)
}

func date(day int) timeutil.Date {
	return timeutil.NewDate(2025, time.January, day)
}

func indicatorsOn(t *testing.T, d timeutil.Date, internalPrice float64) market.CoffeeMarketIndicators {
	t.Helper()
	indicators, err := market.NewCoffeeMarketIndicators(d, internalPrice, 120_000, 3.15, 4_300, 2_850)
	require.NoError(t, err)
	return indicators
}
