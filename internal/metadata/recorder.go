package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Fetch timestamps, durations and HTTP status codes
- Content fingerprints of fetched documents
- Cache lookup outcomes and refreshes
- Classified errors

Metadata is write-only.
No component may read metadata to influence retrieval decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		contentHash string,
	)

	RecordCacheLookup(key string, outcome CacheOutcome, attrs []Attribute)

	RecordRefresh(key string, publicationDate string)
}

/*
Recorder writes structured events through a zerolog logger.
It must not:
- perform I/O decisions
- affect control flow
Events from one Recorder are tagged with its worker id; no ordering across
workers is implied.
*/
type Recorder struct {
	workerId string
	log      zerolog.Logger
}

func NewRecorder(workerId string, log zerolog.Logger) *Recorder {
	return &Recorder{
		workerId: workerId,
		log:      log.With().Str("worker_id", workerId).Logger(),
	}
}

func (r *Recorder) WorkerId() string {
	return r.workerId
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	event := r.log.Error().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Stringer("cause", cause).
		Str("details", details)
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg("error recorded")
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
) {
	r.log.Info().
		Str("url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Str("content_hash", contentHash).
		Msg("upstream fetch")
}

func (r *Recorder) RecordCacheLookup(key string, outcome CacheOutcome, attrs []Attribute) {
	event := r.log.Debug()
	if outcome == CacheOutcomeFutureDated {
		event = r.log.Warn()
	}
	event = event.
		Str("cache_key", key).
		Str("outcome", string(outcome))
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg("cache lookup")
}

func (r *Recorder) RecordRefresh(key string, publicationDate string) {
	r.log.Info().
		Str("cache_key", key).
		Str("publication_date", publicationDate).
		Msg("cache refreshed")
}

// NoopSink implements MetadataSink and does nothing.
// Wiring code (or tests) decides whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
) {
}

func (n *NoopSink) RecordCacheLookup(key string, outcome CacheOutcome, attrs []Attribute) {}

func (n *NoopSink) RecordRefresh(key string, publicationDate string) {}
