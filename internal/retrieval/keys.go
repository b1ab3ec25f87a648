package retrieval

// Cache keys are fixed and distinct per record type.
const (
	MarketIndicatorsCacheKey = "coffee:market:indicators"
	CoffeePriceCacheKey      = "coffee:price:current"
)

// DefaultTTLSeconds lets the backend evict an entry an hour after it was written.
const DefaultTTLSeconds uint64 = 3600
