package cache_test

import (
	"context"
	"time"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
)

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	recordErrorCalled   bool
	recordErrorCause    metadata.ErrorCause
	recordErrorAction   string
	recordStorageCalled bool
	recordStorageOp     string
	recordStorageKey    string
	recordStorageAttrs  []metadata.Attribute
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorCause = cause
	m.recordErrorAction = action
}

func (m *metadataSinkMock) RecordRequest(method string, path string, status int, duration time.Duration, attrs []metadata.Attribute) {
}

func (m *metadataSinkMock) RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []metadata.Attribute) {
	m.recordStorageCalled = true
	m.recordStorageOp = op
	m.recordStorageKey = key
	m.recordStorageAttrs = attrs
}

func (m *metadataSinkMock) RecordFetch(url string, status int, sizeByte int, duration time.Duration, retryCount int) {
}

func (m *metadataSinkMock) RecordListing(pages int, scanned int, kept int, duration time.Duration) {
}

func (m *metadataSinkMock) RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration) {
}

// failingObjectStore fails every operation with the configured error.
type failingObjectStore struct {
	err failure.ClassifiedError
}

func (f *failingObjectStore) Put(ctx context.Context, key string, payload []byte) failure.ClassifiedError {
	return f.err
}

func (f *failingObjectStore) Get(ctx context.Context, key string) ([]byte, bool, failure.ClassifiedError) {
	return nil, false, f.err
}

func (f *failingObjectStore) Delete(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	return false, f.err
}

func (f *failingObjectStore) Exists(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	return false, f.err
}

func (f *failingObjectStore) List(ctx context.Context, pageSize int, token string) (blob.Page, failure.ClassifiedError) {
	return blob.Page{}, f.err
}

func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
