package metadata_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) (*metadata.Recorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	return metadata.NewRecorder("worker-1", log), &buf
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal(line, &event))
		events = append(events, event)
	}
	return events
}

func TestRecorder_RecordError(t *testing.T) {
	rec, buf := newTestRecorder(t)

	rec.RecordError(
		time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC),
		"extractor",
		"MarketExtractor.FetchAndExtract",
		metadata.CauseInvariantViolation,
		"extraction error: missing field",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrField, "publication_date")},
	)

	events := decodeEvents(t, buf)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0]["level"])
	assert.Equal(t, "worker-1", events[0]["worker_id"])
	assert.Equal(t, "extractor", events[0]["package"])
	assert.Equal(t, "invariant_violation", events[0]["cause"])
	assert.Equal(t, "publication_date", events[0]["field"])
}

func TestRecorder_RecordFetch(t *testing.T) {
	rec, buf := newTestRecorder(t)

	rec.RecordFetch("https://example.com/wp/", 200, 150*time.Millisecond, "text/html", "abcdef0123456789")

	events := decodeEvents(t, buf)
	require.Len(t, events, 1)
	assert.Equal(t, "https://example.com/wp/", events[0]["url"])
	assert.Equal(t, float64(200), events[0]["http_status"])
	assert.Equal(t, "abcdef0123456789", events[0]["content_hash"])
}

func TestRecorder_RecordCacheLookup_FutureDatedIsWarning(t *testing.T) {
	rec, buf := newTestRecorder(t)

	rec.RecordCacheLookup("coffee:market:indicators", metadata.CacheOutcomeFresh, nil)
	rec.RecordCacheLookup("coffee:market:indicators", metadata.CacheOutcomeFutureDated, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrDate, "2025-01-11"),
		metadata.NewAttr(metadata.AttrToday, "2025-01-10"),
	})

	events := decodeEvents(t, buf)
	require.Len(t, events, 2)
	assert.Equal(t, "debug", events[0]["level"])
	assert.Equal(t, "fresh", events[0]["outcome"])
	assert.Equal(t, "warn", events[1]["level"])
	assert.Equal(t, "future_dated", events[1]["outcome"])
	assert.Equal(t, "2025-01-11", events[1]["date"])
	assert.Equal(t, "2025-01-10", events[1]["today"])
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "network_failure", metadata.CauseNetworkFailure.String())
	assert.Equal(t, "cache_failure", metadata.CauseCacheFailure.String())
	assert.Equal(t, "unknown", metadata.ErrorCause(99).String())
}
