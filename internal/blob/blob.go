package blob

import (
	"context"
	"time"

	"github.com/wibisana/skimcache/pkg/failure"
)

/*
Responsibilities
- Expose the object-store backend behind a flat key space
- Surface not-found as an outcome, never as an error
- Enumerate the key space in bounded pages

Consistency assumptions
- Per-key put/get/delete are atomic from the reader's perspective
- Read-after-write is strong for a single key
- No cross-key transactions exist; callers must not assume any

The store holds no in-process mutable request state; concurrency safety
for a key is delegated entirely to the backend (last-writer-wins).
*/

// ObjectInfo is one entry of a listing page: the object's key plus its
// backend-assigned creation instant. It exists only for the duration of
// a scan.
type ObjectInfo struct {
	key       string
	createdAt time.Time
}

func NewObjectInfo(key string, createdAt time.Time) ObjectInfo {
	return ObjectInfo{key: key, createdAt: createdAt}
}

func (o ObjectInfo) Key() string {
	return o.key
}

func (o ObjectInfo) CreatedAt() time.Time {
	return o.createdAt
}

// Page is one bounded batch of a paginated listing. An empty NextToken
// means the enumeration is complete.
type Page struct {
	entries   []ObjectInfo
	nextToken string
}

func NewPage(entries []ObjectInfo, nextToken string) Page {
	return Page{entries: entries, nextToken: nextToken}
}

func (p Page) Entries() []ObjectInfo {
	return p.entries
}

func (p Page) NextToken() string {
	return p.nextToken
}

// ObjectStore is the backend collaborator contract. Implementations
// must treat a missing object as a normal outcome (the bool returns),
// reserving errors for genuine backend failures.
type ObjectStore interface {
	// Put writes payload under key, unconditionally overwriting any
	// existing object.
	Put(ctx context.Context, key string, payload []byte) failure.ClassifiedError

	// Get downloads the object under key. The bool reports presence.
	Get(ctx context.Context, key string) ([]byte, bool, failure.ClassifiedError)

	// Delete removes the object under key. The bool reports whether an
	// object existed to remove.
	Delete(ctx context.Context, key string) (bool, failure.ClassifiedError)

	// Exists probes for the object without downloading its payload.
	Exists(ctx context.Context, key string) (bool, failure.ClassifiedError)

	// List returns one page of at most pageSize entries starting at the
	// opaque continuation token ("" for the first page).
	List(ctx context.Context, pageSize int, token string) (Page, failure.ClassifiedError)
}
