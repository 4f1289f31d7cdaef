package fetcher

import (
	"context"

	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
