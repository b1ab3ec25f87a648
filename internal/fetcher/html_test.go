package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/fetcher"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
	"github.com/rohmanhakim/coffee-indicators/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	contentHash string
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
) {
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		contentHash: contentHash,
	})
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
		attrs:       attrs,
	})
}

func (m *mockMetadataSink) RecordCacheLookup(key string, outcome metadata.CacheOutcome, attrs []metadata.Attribute) {
}

func (m *mockMetadataSink) RecordRefresh(key string, publicationDate string) {}

func fetchParamFor(t *testing.T, rawUrl string) fetcher.FetchParam {
	t.Helper()
	u, err := url.Parse(rawUrl)
	require.NoError(t, err)
	return fetcher.NewFetchParam(*u, "test-user-agent")
}

func TestHtmlFetcher_Fetch_Success(t *testing.T) {
	body := "<html><body>Hello World</body></html>"
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, server.Client())

	result, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, result.Code())
	assert.Equal(t, body, string(result.Body()))
	assert.Equal(t, uint64(len(body)), result.SizeByte())
	assert.Equal(t, "text/html; charset=utf-8", result.ContentType())
	assert.Equal(t, hashutil.Fingerprint([]byte(body)), result.ContentHash())
	assert.Equal(t, "test-user-agent", gotUserAgent)

	require.Len(t, sink.fetchEvents, 1)
	assert.Equal(t, server.URL, sink.fetchEvents[0].fetchUrl)
	assert.Equal(t, http.StatusOK, sink.fetchEvents[0].httpStatus)
	assert.Equal(t, "text/html; charset=utf-8", sink.fetchEvents[0].contentType)
	assert.Equal(t, result.ContentHash(), sink.fetchEvents[0].contentHash)
	assert.Empty(t, sink.errorEvents)
}

func TestHtmlFetcher_Fetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/wp/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/wp/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, fetcher.NewHttpClient(5*time.Second))

	result, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL+"/wp"))

	require.Nil(t, err)
	servedFrom := result.URL()
	assert.Equal(t, server.URL+"/wp/", servedFrom.String())
	require.Len(t, sink.fetchEvents, 1)
	assert.Equal(t, server.URL+"/wp", sink.fetchEvents[0].fetchUrl)
}

func TestHtmlFetcher_Fetch_SingleAttemptOn5xx(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, server.Client())

	_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.NotNil(t, err)
	assert.Equal(t, 1, calls)

	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseRequest5xx, fetchErr.Cause)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.True(t, fetchErr.IsRetryable())
	assert.Equal(t, failure.SeverityRecoverable, err.Severity())

	require.Len(t, sink.errorEvents, 1)
	assert.Equal(t, "fetcher", sink.errorEvents[0].packageName)
	assert.Equal(t, "HtmlFetcher.Fetch", sink.errorEvents[0].action)
	assert.Equal(t, metadata.CauseNetworkFailure, sink.errorEvents[0].cause)
	require.Len(t, sink.fetchEvents, 1)
	assert.Equal(t, http.StatusServiceUnavailable, sink.fetchEvents[0].httpStatus)
}

func TestHtmlFetcher_Fetch_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		cause     fetcher.FetchErrorCause
		retryable bool
	}{
		{"not found", http.StatusNotFound, fetcher.ErrCauseRequest4xx, false},
		{"forbidden", http.StatusForbidden, fetcher.ErrCauseRequestPageForbidden, false},
		{"too many requests", http.StatusTooManyRequests, fetcher.ErrCauseRequestTooMany, true},
		{"internal server error", http.StatusInternalServerError, fetcher.ErrCauseRequest5xx, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			f := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, server.Client())
			_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

			require.NotNil(t, err)
			var fetchErr *fetcher.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tt.cause, fetchErr.Cause)
			assert.Equal(t, tt.retryable, fetchErr.Retryable)
		})
	}
}

func TestHtmlFetcher_Fetch_NonHTMLContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "not html"}`))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, server.Client())

	_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.NotNil(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseContentTypeInvalid, fetchErr.Cause)
	assert.False(t, fetchErr.IsRetryable())
	assert.Equal(t, failure.SeverityFatal, err.Severity())

	require.Len(t, sink.errorEvents, 1)
	assert.Equal(t, metadata.CauseContentInvalid, sink.errorEvents[0].cause)
}

func TestHtmlFetcher_Fetch_MissingContentTypeAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// suppress content sniffing
		w.Header()["Content-Type"] = nil
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<ul></ul>"))
	}))
	defer server.Close()

	f := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, server.Client())
	result, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.Nil(t, err)
	assert.Equal(t, "<ul></ul>", string(result.Body()))
}

func TestHtmlFetcher_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(strings.Repeat("a", fetcher.MaxBodyBytes+1)))
	}))
	defer server.Close()

	f := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, server.Client())
	_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.NotNil(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseBodyTooLarge, fetchErr.Cause)
}

func TestHtmlFetcher_Fetch_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverUrl := server.URL
	server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), fetchParamFor(t, serverUrl))

	require.NotNil(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseNetworkFailure, fetchErr.Cause)
	require.Len(t, sink.fetchEvents, 1)
	assert.Equal(t, 0, sink.fetchEvents[0].httpStatus)
}

func TestHtmlFetcher_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.NotNil(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseTimeout, fetchErr.Cause)
}

func TestHtmlFetcher_Fetch_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/loop", http.StatusFound)
	}))
	defer server.Close()

	f := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, fetcher.NewHttpClient(time.Second))
	_, err := f.Fetch(context.Background(), fetchParamFor(t, server.URL))

	require.NotNil(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.ErrCauseRedirectLimitExceeded, fetchErr.Cause)
}
