package integration

import (
	"context"

	"github.com/erp/storesync/internal/domain/integration"
)

// batchItem is one entity queued for a batch call. apply writes the remote
// outcome back locally; for creates res.ID is already the assigned id.
type batchItem[P any] struct {
	label    string // ledger item name
	ref      string // error reference, defaults to label
	remoteID int64  // zero for creates
	payload  P
	apply    func(ctx context.Context, res integration.BatchItemResult) error
}

func (b batchItem[P]) reference() string {
	if b.ref != "" {
		return b.ref
	}
	return b.label
}

// batchPoster sends one chunk of creates and updates
type batchPoster[P any] func(ctx context.Context, create, update []P) (*integration.BatchResult, error)

// batchTally accumulates the outcome of a pass
type batchTally struct {
	created []string
	updated []string
	errors  []integration.SyncError
}

func (t *batchTally) itemFailed(ref string, e *integration.BatchItemError) {
	se := integration.SyncError{ErrorType: integration.ErrorTypeBatchItemFailed, Item: ref}
	if e != nil {
		se.Code = e.Code
		se.Message = e.Message
	} else {
		se.Message = "missing from batch response"
	}
	t.errors = append(t.errors, se)
}

// operation is created when anything was created, else updated, else none
func (t *batchTally) operation() integration.SyncOperation {
	switch {
	case len(t.created) > 0:
		return integration.SyncOperationCreated
	case len(t.updated) > 0:
		return integration.SyncOperationUpdated
	default:
		return integration.SyncOperationNone
	}
}

func (t *batchTally) items() []string {
	items := make([]string, 0, len(t.created)+len(t.updated))
	items = append(items, t.created...)
	return append(items, t.updated...)
}

// pushBatches posts creates then updates in chunks of at most size items.
// Create results are matched by position. Update results are matched by the
// echoed id, falling back to position for entries without one. A failed call
// aborts the push; failed entries are tallied and the push continues.
func pushBatches[P any](
	ctx context.Context,
	size int,
	policy RetryPolicy,
	creates, updates []batchItem[P],
	post batchPoster[P],
	tally *batchTally,
) error {
	if size <= 0 {
		size = 1
	}

	for start := 0; start < len(creates); start += size {
		chunk := creates[start:min(start+size, len(creates))]
		res, err := postChunk(ctx, policy, post, payloadsOf(chunk), nil)
		if err != nil {
			return err
		}
		for i, item := range chunk {
			if i >= len(res.Create) {
				tally.itemFailed(item.reference(), nil)
				continue
			}
			r := res.Create[i]
			id, ok := r.AssignedID()
			if !ok {
				tally.itemFailed(item.reference(), r.Error)
				continue
			}
			r.ID = id
			if err := item.apply(ctx, r); err != nil {
				return err
			}
			tally.created = append(tally.created, item.label)
		}
	}

	for start := 0; start < len(updates); start += size {
		chunk := updates[start:min(start+size, len(updates))]
		res, err := postChunk(ctx, policy, post, nil, payloadsOf(chunk))
		if err != nil {
			return err
		}
		matched := matchUpdates(chunk, res.Update)
		for i, item := range chunk {
			r := matched[i]
			if r == nil {
				tally.itemFailed(item.reference(), nil)
				continue
			}
			if r.Error != nil {
				tally.itemFailed(item.reference(), r.Error)
				continue
			}
			if err := item.apply(ctx, *r); err != nil {
				return err
			}
			tally.updated = append(tally.updated, item.label)
		}
	}
	return nil
}

func postChunk[P any](ctx context.Context, policy RetryPolicy, post batchPoster[P], create, update []P) (*integration.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var res *integration.BatchResult
	err := withRetry(ctx, policy, retryBatch, func() error {
		var err error
		res, err = post(ctx, create, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &integration.BatchResult{}
	}
	return res, nil
}

func payloadsOf[P any](items []batchItem[P]) []P {
	out := make([]P, len(items))
	for i := range items {
		out[i] = items[i].payload
	}
	return out
}

// matchUpdates pairs each queued update with its response entry
func matchUpdates[P any](items []batchItem[P], results []integration.BatchItemResult) []*integration.BatchItemResult {
	byID := make(map[int64]int, len(results))
	for i, r := range results {
		if r.ID != 0 {
			byID[r.ID] = i
		}
	}

	out := make([]*integration.BatchItemResult, len(items))
	for j, item := range items {
		if i, ok := byID[item.remoteID]; ok {
			out[j] = &results[i]
			continue
		}
		if j < len(results) && results[j].ID == 0 {
			out[j] = &results[j]
		}
	}
	return out
}
