package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/wibisana/skimcache/pkg/failure"
)

// Compile-time interface check
var _ ObjectStore = (*GCSStore)(nil)

// GCSStore is the Cloud Storage implementation of ObjectStore. The
// client is constructed once at startup and used read-only thereafter;
// it needs no teardown for the lifetime of the process.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, payload []byte) failure.ClassifiedError {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(payload); err != nil {
		// Close to release the upload; the write error is authoritative.
		w.Close()
		return &BlobError{
			Message:   fmt.Sprintf("write %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	// The upload is not durable until Close returns nil.
	if err := w.Close(); err != nil {
		return &BlobError{
			Message:   fmt.Sprintf("finalize %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, bool, failure.ClassifiedError) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, &BlobError{
			Message:   fmt.Sprintf("open %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
		}
	}
	defer r.Close()

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, false, &BlobError{
			Message:   fmt.Sprintf("read %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
		}
	}
	return payload, true, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, &BlobError{
			Message:   fmt.Sprintf("delete %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return true, nil
}

func (s *GCSStore) Exists(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	_, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, &BlobError{
			Message:   fmt.Sprintf("stat %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseStatFailure,
		}
	}
	return true, nil
}

func (s *GCSStore) List(ctx context.Context, pageSize int, token string) (Page, failure.ClassifiedError) {
	query := &storage.Query{Projection: storage.ProjectionNoACL}
	// Only the name and creation time are consumed; skip the rest of the
	// attribute payload on the wire.
	if err := query.SetAttrSelection([]string{"Name", "Created"}); err != nil {
		return Page{}, &BlobError{
			Message:   fmt.Sprintf("attr selection: %v", err),
			Retryable: false,
			Cause:     ErrCauseListFailure,
		}
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	pager := iterator.NewPager(it, pageSize, token)

	var attrs []*storage.ObjectAttrs
	nextToken, err := pager.NextPage(&attrs)
	if err != nil {
		return Page{}, &BlobError{
			Message:   fmt.Sprintf("list page: %v", err),
			Retryable: true,
			Cause:     ErrCauseListFailure,
		}
	}

	entries := make([]ObjectInfo, 0, len(attrs))
	for _, attr := range attrs {
		entries = append(entries, NewObjectInfo(attr.Name, attr.Created))
	}
	return NewPage(entries, nextToken), nil
}
