package fetcher

import (
	"net/url"
)

// HTTP boundary

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

type FetchResult struct {
	url  url.URL
	body []byte
	meta responseMeta
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

func (f *FetchResult) SizeByte() int {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

type responseMeta struct {
	statusCode          int
	transferredSizeByte int
	contentType         string
}

// NewFetchResultForTest builds a FetchResult without going through the
// network, for packages that consume fetch results in their tests.
func NewFetchResultForTest(
	fetchUrl url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: responseMeta{
			statusCode:          statusCode,
			transferredSizeByte: len(body),
			contentType:         contentType,
		},
	}
}
