package fetcher

import (
	"net/url"
)

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) UserAgent() string {
	return p.userAgent
}

// FetchResult is one successful response. URL is where the body was served
// from, which differs from the requested URL after a redirect.
type FetchResult struct {
	url  url.URL
	body []byte
	meta responseMeta
}

type responseMeta struct {
	statusCode  int
	sizeByte    uint64
	contentType string
	contentHash string
	headers     map[string]string
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.sizeByte
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

// ContentHash is the blake3 fingerprint of Body.
func (f *FetchResult) ContentHash() string {
	return f.meta.contentHash
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.headers
}

func newFetchResult(servedFrom url.URL, statusCode int, body []byte, headers map[string]string, contentHash string) FetchResult {
	return FetchResult{
		url:  servedFrom,
		body: body,
		meta: responseMeta{
			statusCode:  statusCode,
			sizeByte:    uint64(len(body)),
			contentType: headers["Content-Type"],
			contentHash: contentHash,
			headers:     headers,
		},
	}
}

// NewFetchResultForTest builds a FetchResult without a content hash.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	responseHeaders map[string]string,
) FetchResult {
	return newFetchResult(url, statusCode, body, responseHeaders, "")
}
