package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for refresh, fallback, or abort decisions.
	 - Packages MAY map their local errors to ErrorCause but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

	Fallback for failures that do not map to a known category.

# CauseNetworkFailure

	Transport or remote availability failure reaching the upstream publisher.
	Timeouts, DNS failures, connection resets, non-success HTTP statuses.

# CauseContentInvalid

	The document was fetched but its structure could not be read.
	Non-HTML responses, missing indicator container, malformed money or date literals.

# CauseCacheFailure

	The cache backend failed to read, write, encode or decode an entry.

# CauseInvariantViolation

	A record invariant does not hold, e.g. a mandatory indicator is absent.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseContentInvalid
	CauseCacheFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseCacheFailure:
		return "cache_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// CacheOutcome describes what a freshness check decided for a cached entry.
type CacheOutcome string

const (
	CacheOutcomeFresh       CacheOutcome = "fresh"
	CacheOutcomeMiss        CacheOutcome = "miss"
	CacheOutcomeStale       CacheOutcome = "stale"
	CacheOutcomeFutureDated CacheOutcome = "future_dated"
	// CacheOutcomeHit is used by lookups that do no freshness check.
	CacheOutcomeHit CacheOutcome = "hit"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrField      AttributeKey = "field"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrDate       AttributeKey = "date"
	AttrToday      AttributeKey = "today"
	AttrCodec      AttributeKey = "codec"
)
