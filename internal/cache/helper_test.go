package cache_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/market"
	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"github.com/stretchr/testify/require"
)

func sampleIndicators(t *testing.T) market.CoffeeMarketIndicators {
	t.Helper()
	indicators, err := market.NewCoffeeMarketIndicators(
		timeutil.NewDate(2025, time.January, 10),
		1_700_000.0,
		120_000.0,
		3.15,
		4_312.55,
		2_850.5,
	)
	require.NoError(t, err)
	return indicators
}

func samplePrice(t *testing.T) market.CoffeePrice {
	t.Helper()
	price, err := market.NewCoffeePrice(1_700_000.0, timeutil.NewDate(2025, time.January, 10))
	require.NoError(t, err)
	return price
}
