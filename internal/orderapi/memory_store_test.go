package orderapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	cart := &Cart{UserID: "u1", RestaurantID: "r1", Lines: []Line{{ItemID: "1", Quantity: 1}}}
	require.NoError(t, store.SaveCart(ctx, cart))

	// later writes to the caller's cart do not leak into the store
	cart.Lines[0].Quantity = 7

	got, err := store.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)

	require.NoError(t, store.DeleteCart(ctx, "u1"))
	assert.ErrorIs(t, store.DeleteCart(ctx, "u1"), ErrCartNotFound)
}
