package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplabs/shopcore/internal/dal/interfaces/iorderstore"
	"github.com/shoplabs/shopcore/internal/service/models/order"
)

func TestLoad_MissingUserIsEmptyListVersionZero(t *testing.T) {
	sut := NewStore()

	orders, version, err := sut.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Zero(t, version)
}

func TestSave_VersionAdvances(t *testing.T) {
	sut := NewStore()
	ctx := context.Background()

	require.NoError(t, sut.Save(ctx, "u1", []order.Order{{ID: "o1"}}, 0))

	orders, version, err := sut.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(1), version)

	require.NoError(t, sut.Save(ctx, "u1", orders, version))
	_, version, _ = sut.Load(ctx, "u1")
	assert.Equal(t, uint64(2), version)
}

func TestSave_StaleVersionConflicts(t *testing.T) {
	sut := NewStore()
	ctx := context.Background()

	require.NoError(t, sut.Save(ctx, "u1", []order.Order{{ID: "o1"}}, 0))

	err := sut.Save(ctx, "u1", []order.Order{{ID: "o2"}}, 0)
	assert.ErrorIs(t, err, iorderstore.ErrVersionConflict)
}

func TestLoad_ReturnsDetachedCopy(t *testing.T) {
	sut := NewStore()
	ctx := context.Background()

	require.NoError(t, sut.Save(ctx, "u1", []order.Order{{
		ID:    "o1",
		Items: []order.LineItem{{ProductID: "p1", Quantity: 1}},
	}}, 0))

	orders, _, _ := sut.Load(ctx, "u1")
	orders[0].Items[0].Quantity = 99

	again, _, _ := sut.Load(ctx, "u1")
	assert.Equal(t, 1, again[0].Items[0].Quantity)
}

func TestPendingCompensation_DueOrdersOnly(t *testing.T) {
	sut := NewStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sut.Save(ctx, "u1", []order.Order{
		{ID: "due", CartClearance: order.CartClearance{
			Status:        order.ClearancePending,
			NextAttemptAt: now.Add(-time.Minute),
		}},
		{ID: "future", CartClearance: order.CartClearance{
			Status:        order.ClearancePending,
			NextAttemptAt: now.Add(time.Hour),
		}},
		{ID: "done", CartClearance: order.CartClearance{
			Status: order.ClearanceDone,
		}},
		{ID: "failed", CartClearance: order.CartClearance{
			Status:        order.ClearanceFailed,
			NextAttemptAt: now.Add(-time.Hour),
		}},
	}, 0))

	due, err := sut.PendingCompensation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
}

func TestPendingCompensation_OrderedAndLimited(t *testing.T) {
	sut := NewStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sut.Save(ctx, "u1", []order.Order{
		{ID: "newer", CartClearance: order.CartClearance{
			Status:        order.ClearancePending,
			NextAttemptAt: now.Add(-time.Minute),
		}},
		{ID: "older", CartClearance: order.CartClearance{
			Status:        order.ClearancePending,
			NextAttemptAt: now.Add(-time.Hour),
		}},
	}, 0))

	due, err := sut.PendingCompensation(ctx, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "older", due[0].ID)
}
