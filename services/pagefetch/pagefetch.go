// Package pagefetch provides a bounded-concurrency primitive for fetching the
// numbered pages of a multi-page resource, where each page fetch is an
// independent network operation that may fail transiently.
package pagefetch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"
)

// retryDelay is the fixed pause before a failed page's single retry.
const retryDelay = 500 * time.Millisecond

// FetchFunc fetches one logical page.
type FetchFunc[T any] func(ctx context.Context, pageNumber int) (T, error)

// FailedPage records a page that failed both its attempts.
type FailedPage struct {
	PageNumber int    `json:"pageNumber"`
	Reason     string `json:"reason"`
}

// Result is the complete accounting of one FetchPages call: every requested
// page number ends up in exactly one of Results or FailedPages.
type Result[T any] struct {
	Results     []T
	FailedPages []FailedPage
}

// Failed reports whether any page ultimately failed. Whether that invalidates
// the whole resource (an incomplete enumeration may be unsafe to treat as the
// final answer) is the caller's decision, not this package's.
func (r Result[T]) Failed() bool {
	return len(r.FailedPages) > 0
}

type pageResult[T any] struct {
	pageNumber int
	value      T
}

// FetchPages fetches every page number with at most `concurrency` fetches in
// flight. A failed page is retried exactly once after a short fixed delay;
// a second failure is recorded in FailedPages and the remaining pages still
// proceed. The call completes once all pages have been attempted, regardless
// of individual outcomes. Successful results are returned in page-number
// order.
func FetchPages[T any](ctx context.Context, pageNumbers []int, concurrency int, fetchOne FetchFunc[T]) Result[T] {
	if len(pageNumbers) == 0 {
		return Result[T]{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(pageNumbers) {
		concurrency = len(pageNumbers)
	}

	var (
		mu        sync.Mutex
		succeeded []pageResult[T]
		failed    []FailedPage
	)

	workers := pool.New().WithMaxGoroutines(concurrency)
	for _, pageNumber := range pageNumbers {
		workers.Go(func() {
			value, err := fetchPageOnce(ctx, pageNumber, fetchOne)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[pagefetch] page %d failed after retry: %v", pageNumber, err)
				failed = append(failed, FailedPage{PageNumber: pageNumber, Reason: err.Error()})
				return
			}
			succeeded = append(succeeded, pageResult[T]{pageNumber: pageNumber, value: value})
		})
	}
	workers.Wait()

	sort.Slice(succeeded, func(i, j int) bool { return succeeded[i].pageNumber < succeeded[j].pageNumber })
	sort.Slice(failed, func(i, j int) bool { return failed[i].PageNumber < failed[j].PageNumber })

	results := make([]T, 0, len(succeeded))
	for _, r := range succeeded {
		results = append(results, r.value)
	}
	return Result[T]{Results: results, FailedPages: failed}
}

// fetchPageOnce runs one page through the attempt-then-single-retry protocol.
func fetchPageOnce[T any](ctx context.Context, pageNumber int, fetchOne FetchFunc[T]) (T, error) {
	var value T
	err := retry.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fetchOne(ctx, pageNumber)
			if err != nil {
				return err
			}
			value = v
			return nil
		},
		retry.Attempts(2),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	return value, err
}

// FetchUntilEmpty serves open-ended listings that expose no page count. It
// fetches batches of `concurrency` consecutive pages starting at firstPage
// and stops consuming once any page in a batch comes back with zero items —
// a natural end-of-data signal, distinct from a fetch failure. Items from
// pages past the first empty page in the same batch are discarded.
func FetchUntilEmpty[T any](ctx context.Context, firstPage, concurrency int, fetchOne FetchFunc[[]T]) ([]T, []FailedPage) {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		items  []T
		failed []FailedPage
	)
	for next := firstPage; ; next += concurrency {
		batch := make([]int, 0, concurrency)
		for i := 0; i < concurrency; i++ {
			batch = append(batch, next+i)
		}

		res := FetchPages(ctx, batch, concurrency, fetchOne)
		failed = append(failed, res.FailedPages...)

		done := false
		for _, page := range res.Results {
			if len(page) == 0 {
				done = true
				break
			}
			items = append(items, page...)
		}
		// A failed page leaves a hole in the enumeration; pressing on past it
		// could loop forever on a dead endpoint, so stop and let the caller
		// judge the accounting.
		if done || res.Failed() || ctx.Err() != nil {
			return items, failed
		}
	}
}

// ErrIncomplete wraps a failed-page accounting into an error for callers that
// treat any page failure as invalidating the whole resource.
func ErrIncomplete(resource string, failed []FailedPage) error {
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d page(s) failed after retry (first: page %d: %s)",
		resource, len(failed), failed[0].PageNumber, failed[0].Reason)
}
