package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/domain/integration"
)

type recordingPoster struct {
	calls   [][2]int // create and update counts per call
	nextID  int64
	respond func(create, update []string) (*integration.BatchResult, error)
}

func (p *recordingPoster) post(_ context.Context, create, update []string) (*integration.BatchResult, error) {
	p.calls = append(p.calls, [2]int{len(create), len(update)})
	if p.respond != nil {
		return p.respond(create, update)
	}
	res := &integration.BatchResult{}
	for range create {
		p.nextID++
		res.Create = append(res.Create, integration.BatchItemResult{ID: p.nextID})
	}
	for _, u := range update {
		var id int64
		_, _ = fmt.Sscanf(u, "u%d", &id)
		res.Update = append(res.Update, integration.BatchItemResult{ID: id})
	}
	return res, nil
}

func createItems(n int, applied map[string]int64) []batchItem[string] {
	items := make([]batchItem[string], n)
	for i := range items {
		label := fmt.Sprintf("c%d", i)
		items[i] = batchItem[string]{
			label:   label,
			payload: label,
			apply: func(_ context.Context, res integration.BatchItemResult) error {
				applied[label] = res.ID
				return nil
			},
		}
	}
	return items
}

func updateItem(remoteID int64) batchItem[string] {
	return batchItem[string]{
		label:    fmt.Sprintf("u%d", remoteID),
		remoteID: remoteID,
		payload:  fmt.Sprintf("u%d", remoteID),
		apply:    func(context.Context, integration.BatchItemResult) error { return nil },
	}
}

var fastRetry = RetryPolicy{MaxRetries: 2, Delay: time.Millisecond}

func TestPushBatches_ChunksAtLimit(t *testing.T) {
	applied := map[string]int64{}
	poster := &recordingPoster{}
	tally := &batchTally{}

	creates := createItems(250, applied)
	updates := []batchItem[string]{updateItem(7), updateItem(8)}

	err := pushBatches(context.Background(), 99, fastRetry, creates, updates, poster.post, tally)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{99, 0}, {99, 0}, {52, 0}, {0, 2}}, poster.calls)
	assert.Len(t, tally.created, 250)
	assert.Equal(t, []string{"u7", "u8"}, tally.updated)
	assert.Equal(t, int64(1), applied["c0"])
	assert.Equal(t, int64(250), applied["c249"])
	assert.Equal(t, integration.SyncOperationCreated, tally.operation())
	assert.Len(t, tally.items(), 252)
}

func TestPushBatches_PerItemFailures(t *testing.T) {
	applied := map[string]int64{}
	poster := &recordingPoster{respond: func(create, update []string) (*integration.BatchResult, error) {
		return &integration.BatchResult{Create: []integration.BatchItemResult{
			{Error: &integration.BatchItemError{Code: "term_exists", ResourceID: 44}},
			{Error: &integration.BatchItemError{Code: "invalid", Message: "bad name"}},
		}}, nil
	}}
	tally := &batchTally{}

	err := pushBatches(context.Background(), 10, fastRetry, createItems(3, applied), nil, poster.post, tally)
	require.NoError(t, err)

	assert.Equal(t, []string{"c0"}, tally.created)
	assert.Equal(t, int64(44), applied["c0"])
	require.Len(t, tally.errors, 2)
	assert.Equal(t, "c1", tally.errors[0].Item)
	assert.Equal(t, "invalid", tally.errors[0].Code)
	assert.Equal(t, "c2", tally.errors[1].Item)
	assert.Equal(t, "missing from batch response", tally.errors[1].Message)
}

func TestPushBatches_WriteBackErrorAborts(t *testing.T) {
	poster := &recordingPoster{}
	tally := &batchTally{}
	boom := errors.New("disk full")
	items := []batchItem[string]{{
		label:   "c0",
		payload: "c0",
		apply:   func(context.Context, integration.BatchItemResult) error { return boom },
	}}

	err := pushBatches(context.Background(), 10, fastRetry, items, []batchItem[string]{updateItem(3)}, poster.post, tally)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, poster.calls, 1)
	assert.Empty(t, tally.created)
}

func TestPushBatches_RetriesOnlyRateLimits(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		attempts := 0
		poster := &recordingPoster{}
		post := func(ctx context.Context, create, update []string) (*integration.BatchResult, error) {
			attempts++
			if attempts < 3 {
				return nil, fmt.Errorf("status 429: %w", integration.ErrPlatformRateLimited)
			}
			return poster.post(ctx, create, update)
		}
		tally := &batchTally{}
		err := pushBatches(context.Background(), 10, fastRetry, createItems(1, map[string]int64{}), nil, post, tally)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Len(t, tally.created, 1)
	})

	t.Run("unavailable is not resent", func(t *testing.T) {
		attempts := 0
		post := func(context.Context, []string, []string) (*integration.BatchResult, error) {
			attempts++
			return nil, integration.ErrPlatformUnavailable
		}
		err := pushBatches(context.Background(), 10, fastRetry, createItems(1, map[string]int64{}), nil, post, &batchTally{})
		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
		assert.Equal(t, 1, attempts)
	})
}

func TestPushBatches_StopsWhenContextDone(t *testing.T) {
	poster := &recordingPoster{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pushBatches(ctx, 10, fastRetry, createItems(2, map[string]int64{}), nil, poster.post, &batchTally{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, poster.calls)
}

func TestMatchUpdates(t *testing.T) {
	items := []batchItem[string]{updateItem(10), updateItem(20), updateItem(30)}

	t.Run("by echoed id regardless of order", func(t *testing.T) {
		results := []integration.BatchItemResult{{ID: 30}, {ID: 10}, {ID: 20}}
		matched := matchUpdates(items, results)
		require.Len(t, matched, 3)
		assert.Equal(t, int64(10), matched[0].ID)
		assert.Equal(t, int64(20), matched[1].ID)
		assert.Equal(t, int64(30), matched[2].ID)
	})

	t.Run("falls back to position for entries without id", func(t *testing.T) {
		results := []integration.BatchItemResult{
			{ID: 10},
			{Error: &integration.BatchItemError{Code: "woocommerce_rest_product_invalid_id"}},
		}
		matched := matchUpdates(items, results)
		assert.Equal(t, int64(10), matched[0].ID)
		require.NotNil(t, matched[1])
		assert.Equal(t, "woocommerce_rest_product_invalid_id", matched[1].Error.Code)
		assert.Nil(t, matched[2])
	})

	t.Run("an id-bearing entry is never reused positionally", func(t *testing.T) {
		results := []integration.BatchItemResult{{ID: 99}, {ID: 20}}
		matched := matchUpdates(items, results)
		assert.Nil(t, matched[0])
		assert.Equal(t, int64(20), matched[1].ID)
		assert.Nil(t, matched[2])
	})
}

func TestBatchTally_Operation(t *testing.T) {
	assert.Equal(t, integration.SyncOperationNone, (&batchTally{}).operation())
	assert.Equal(t, integration.SyncOperationUpdated, (&batchTally{updated: []string{"a"}}).operation())
	assert.Equal(t, integration.SyncOperationCreated, (&batchTally{created: []string{"a"}, updated: []string{"b"}}).operation())
}
