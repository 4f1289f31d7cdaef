package recency

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/internal/urlcodec"
	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/urlutil"
)

/*
Index answers "which URLs were summarized most recently" without ever
holding the whole key space in memory.

Responsibilities:
  - Page through the object store's unordered listing and keep only the
    maxEntries newest keys in a bounded min-heap.
  - Filter out keys that do not belong to this service: wrong suffix,
    missing creation timestamp, or a key that does not decode back to a
    valid https URL.
  - Report scan shape (pages, scanned, kept) to the metadata sink.

Semantics:
  - The result is closed-world. A listing failure on any page aborts the
    scan and returns an empty slice together with the error; a partial
    heap is never served as if it were the full answer.
  - Keys are decoded only after the scan completes, so at most
    maxEntries decode attempts happen per query regardless of how many
    objects the bucket holds.

Properties:
  - Memory is O(maxEntries), independent of the listing length.
  - Entries come back sorted newest first; equal timestamps keep a
    stable order within one query.
*/
type Index struct {
	objects      blob.ObjectStore
	metadataSink metadata.MetadataSink
	pageSize     int
}

func NewIndex(objects blob.ObjectStore, metadataSink metadata.MetadataSink, pageSize int) *Index {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Index{
		objects:      objects,
		metadataSink: metadataSink,
		pageSize:     pageSize,
	}
}

type heapItem struct {
	key       string
	createdAt time.Time
}

// entryMinHeap keeps the oldest retained item at the root so the next
// newer candidate can evict it in O(log k).
type entryMinHeap []heapItem

func (h entryMinHeap) Len() int            { return len(h) }
func (h entryMinHeap) Less(i, j int) bool  { return h[i].createdAt.Before(h[j].createdAt) }
func (h entryMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryMinHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *entryMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK scans the full listing and returns at most maxEntries entries,
// newest first. On any listing failure it returns an empty result plus
// the error instead of a silently truncated view.
func (ix *Index) TopK(ctx context.Context, maxEntries int) ([]Entry, failure.ClassifiedError) {
	if maxEntries < 1 {
		return []Entry{}, nil
	}

	start := time.Now()
	retained := &entryMinHeap{}
	heap.Init(retained)

	token := ""
	pages := 0
	scanned := 0
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			indexErr := &IndexError{
				Message:   fmt.Sprintf("recency scan cancelled after %d page(s): %v", pages, ctxErr),
				Retryable: false,
				Cause:     ErrCauseScanCancelled,
			}
			ix.recordScanFailure(indexErr, pages)
			return []Entry{}, indexErr
		}

		page, listErr := ix.objects.List(ctx, ix.pageSize, token)
		if listErr != nil {
			indexErr := &IndexError{
				Message:   fmt.Sprintf("recency scan aborted on page %d: %v", pages+1, listErr),
				Retryable: listErr.Severity() == failure.SeverityRecoverable,
				Cause:     ErrCauseScanAborted,
			}
			ix.recordScanFailure(indexErr, pages)
			return []Entry{}, indexErr
		}
		pages++

		for _, info := range page.Entries() {
			if !strings.HasSuffix(info.Key(), urlcodec.StorageSuffix) {
				continue
			}
			if info.CreatedAt().IsZero() {
				continue
			}
			scanned++
			candidate := heapItem{key: info.Key(), createdAt: info.CreatedAt()}
			if retained.Len() < maxEntries {
				heap.Push(retained, candidate)
				continue
			}
			if candidate.createdAt.After((*retained)[0].createdAt) {
				(*retained)[0] = candidate
				heap.Fix(retained, 0)
			}
		}

		token = page.NextToken()
		if token == "" {
			break
		}
	}

	drained := make([]heapItem, 0, retained.Len())
	for retained.Len() > 0 {
		drained = append(drained, heap.Pop(retained).(heapItem))
	}
	sort.SliceStable(drained, func(i, j int) bool {
		return drained[i].createdAt.After(drained[j].createdAt)
	})

	entries := make([]Entry, 0, len(drained))
	for _, item := range drained {
		rawURL, decodeErr := urlcodec.Decode(item.key)
		if decodeErr != nil {
			ix.recordDroppedKey(item.key, decodeErr.Error())
			continue
		}
		if _, ok := urlutil.ValidateHTTPS(rawURL); !ok {
			ix.recordDroppedKey(item.key, "decoded key is not a valid https url")
			continue
		}
		entries = append(entries, NewEntry(rawURL, item.createdAt))
	}

	ix.metadataSink.RecordListing(pages, scanned, len(entries), time.Since(start))
	return entries, nil
}

func (ix *Index) recordScanFailure(indexErr *IndexError, pages int) {
	ix.metadataSink.RecordError(
		time.Now(),
		"recency",
		"TopK",
		metadata.CauseStorageFailure,
		indexErr.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrMessage, fmt.Sprintf("pages completed: %d", pages)),
		},
	)
}

func (ix *Index) recordDroppedKey(key string, reason string) {
	ix.metadataSink.RecordError(
		time.Now(),
		"recency",
		"TopK",
		metadata.CauseCodecFailure,
		reason,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, key),
		},
	)
}
