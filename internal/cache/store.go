package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/internal/urlcodec"
	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/hashutil"
)

/*
Responsibilities
- Derive the storage key for a URL via the codec
- Serialize artifacts into the wire format (JSON, gzip-compressed)
- Persist, retrieve and remove artifacts through the object store

Write Semantics
- Unconditional overwrite, last-writer-wins
- One backend write per put; the backend call is the atomicity boundary
- No optimistic concurrency, no in-process locking

Read Semantics
- A clean miss is an outcome, not an error
- A payload that exists but cannot be decoded is a StorageError,
  distinguishable from a miss
*/

// Store maps URLs to cached artifacts over an object-store backend. It
// is constructed once at startup and used read-only thereafter.
type Store struct {
	objects      blob.ObjectStore
	metadataSink metadata.MetadataSink
}

func NewStore(
	objects blob.ObjectStore,
	metadataSink metadata.MetadataSink,
) Store {
	return Store{
		objects:      objects,
		metadataSink: metadataSink,
	}
}

// Put persists the artifact for url, overwriting any previous value.
func (s *Store) Put(ctx context.Context, url string, artifact Artifact) failure.ClassifiedError {
	key := urlcodec.Encode(url)
	startTime := time.Now()

	payload, sealErr := seal(artifact)
	if sealErr != nil {
		s.recordError("Store.Put", url, sealErr)
		return sealErr
	}

	if err := s.objects.Put(ctx, key, payload); err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("put %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Put", url, storageErr)
		return storageErr
	}

	s.metadataSink.RecordStorage("put", key, len(payload), time.Since(startTime),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, url),
			metadata.NewAttr(metadata.AttrContentHash, contentHash(payload)),
		})
	return nil
}

// Get retrieves the artifact for url. The bool reports presence; a
// payload that fails to decode yields a StorageError, never a miss.
func (s *Store) Get(ctx context.Context, url string) (Artifact, bool, failure.ClassifiedError) {
	key := urlcodec.Encode(url)
	startTime := time.Now()

	// Cheap existence probe avoids downloading on the common miss path.
	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("exists %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Get", url, storageErr)
		return Artifact{}, false, storageErr
	}
	if !exists {
		return Artifact{}, false, nil
	}

	payload, found, err := s.objects.Get(ctx, key)
	if err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("get %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Get", url, storageErr)
		return Artifact{}, false, storageErr
	}
	if !found {
		// Deleted between the probe and the download; a normal miss.
		return Artifact{}, false, nil
	}

	artifact, unsealErr := unseal(payload)
	if unsealErr != nil {
		s.recordError("Store.Get", url, unsealErr)
		return Artifact{}, false, unsealErr
	}

	s.metadataSink.RecordStorage("get", key, len(payload), time.Since(startTime),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, url),
			metadata.NewAttr(metadata.AttrContentHash, contentHash(payload)),
		})
	return artifact, true, nil
}

// Delete removes the artifact for url. Deleting an absent URL reports
// deleted=false with no error, so repeat deletes are idempotent.
func (s *Store) Delete(ctx context.Context, url string) (bool, failure.ClassifiedError) {
	key := urlcodec.Encode(url)
	startTime := time.Now()

	// Probe first so a repeat delete does not hit the backend's delete
	// path at all.
	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("exists %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Delete", url, storageErr)
		return false, storageErr
	}
	if !exists {
		return false, nil
	}

	deleted, err := s.objects.Delete(ctx, key)
	if err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("delete %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Delete", url, storageErr)
		return false, storageErr
	}

	s.metadataSink.RecordStorage("delete", key, 0, time.Since(startTime),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, url),
		})
	return deleted, nil
}

// Exists probes for a cached artifact without downloading it.
func (s *Store) Exists(ctx context.Context, url string) (bool, failure.ClassifiedError) {
	key := urlcodec.Encode(url)

	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		storageErr := &StorageError{
			Message:   fmt.Sprintf("exists %s: %v", key, err),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseBackendFailure,
		}
		s.recordError("Store.Exists", url, storageErr)
		return false, storageErr
	}
	return exists, nil
}

func (s *Store) recordError(action string, url string, err *StorageError) {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		mapStorageErrorToMetadataCause(err),
		err.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, url),
		},
	)
}

// seal serializes an artifact into the wire format: JSON, then gzip.
func seal(artifact Artifact) ([]byte, *StorageError) {
	encoded, err := json.Marshal(artifactDTO{
		Title:   artifact.Title(),
		Summary: artifact.Summary(),
	})
	if err != nil {
		return nil, &StorageError{
			Message:   fmt.Sprintf("marshal artifact: %v", err),
			Retryable: false,
			Cause:     ErrCauseSealFailure,
		}
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(encoded); err != nil {
		return nil, &StorageError{
			Message:   fmt.Sprintf("compress artifact: %v", err),
			Retryable: false,
			Cause:     ErrCauseSealFailure,
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &StorageError{
			Message:   fmt.Sprintf("finalize compression: %v", err),
			Retryable: false,
			Cause:     ErrCauseSealFailure,
		}
	}
	return buf.Bytes(), nil
}

// unseal reverses seal. Any failure means the stored payload is not a
// value this store ever wrote: corrupt, truncated, or foreign.
func unseal(payload []byte) (Artifact, *StorageError) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return Artifact{}, corruptPayload(err)
	}
	defer zr.Close()

	decoded, err := io.ReadAll(zr)
	if err != nil {
		return Artifact{}, corruptPayload(err)
	}

	var dto artifactDTO
	if err := json.Unmarshal(decoded, &dto); err != nil {
		return Artifact{}, corruptPayload(err)
	}
	return NewArtifact(dto.Title, dto.Summary), nil
}

func corruptPayload(err error) *StorageError {
	return &StorageError{
		Message:   fmt.Sprintf("decode stored payload: %v", err),
		Retryable: false,
		Cause:     ErrCauseCorruptPayload,
	}
}

func contentHash(payload []byte) string {
	return hashutil.ShortContentHash(payload)
}
