package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Add_MergesSameProduct(t *testing.T) {
	cart := &Cart{SessionID: "s1"}

	cart.Add(CartItem{ProductID: 1, Name: "Polera", Price: 6000, Quantity: 1})
	cart.Add(CartItem{ProductID: 1, Name: "Polera", Price: 6000, Quantity: 2})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.TotalItems())
	assert.Equal(t, Price(18000), cart.TotalPrice())
}

func TestCart_Add_KeepsInsertionOrder(t *testing.T) {
	cart := &Cart{SessionID: "s1"}

	cart.Add(CartItem{ProductID: 3, Quantity: 1})
	cart.Add(CartItem{ProductID: 1, Quantity: 1})
	cart.Add(CartItem{ProductID: 2, Quantity: 1})
	cart.Add(CartItem{ProductID: 1, Quantity: 5})

	ids := make([]int64, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestCart_UpdateQuantity_RemovesAtZero(t *testing.T) {
	cart := &Cart{SessionID: "s1"}
	cart.Add(CartItem{ProductID: 1, Price: 5000, Quantity: 1})

	cart.UpdateQuantity(1, -1)

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems())
	assert.Equal(t, Price(0), cart.TotalPrice())
}

func TestCart_UpdateQuantity_NegativeBelowZero(t *testing.T) {
	cart := &Cart{SessionID: "s1"}
	cart.Add(CartItem{ProductID: 1, Price: 5000, Quantity: 2})

	cart.UpdateQuantity(1, -5)

	// no zero or negative quantity line may ever survive
	assert.Empty(t, cart.Items)
}

func TestCart_UpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	cart := &Cart{SessionID: "s1"}
	cart.Add(CartItem{ProductID: 1, Price: 5000, Quantity: 2})

	cart.UpdateQuantity(99, 1)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCart_Remove(t *testing.T) {
	cart := &Cart{SessionID: "s1"}
	cart.Add(CartItem{ProductID: 1, Quantity: 2})
	cart.Add(CartItem{ProductID: 2, Quantity: 1})

	cart.Remove(1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)

	// removing again is a no-op
	cart.Remove(1)
	assert.Len(t, cart.Items, 1)
}

func TestCart_Totals(t *testing.T) {
	cart := &Cart{SessionID: "s1"}
	cart.Add(CartItem{ProductID: 1, Price: 6000, Quantity: 3})
	cart.Add(CartItem{ProductID: 2, Price: 4500, Quantity: 2})

	assert.Equal(t, 5, cart.TotalItems())
	assert.Equal(t, Price(27000), cart.TotalPrice())

	// totals track mutations, they are never cached
	cart.UpdateQuantity(2, -1)
	assert.Equal(t, 4, cart.TotalItems())
	assert.Equal(t, Price(22500), cart.TotalPrice())
}

func TestCart_SerializationRoundTrip(t *testing.T) {
	cart := &Cart{
		SessionID: "s1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	cart.Add(CartItem{ProductID: 1, Name: "Polera", Image: "polera.jpg", Price: 6000, Quantity: 3})
	cart.Add(CartItem{ProductID: 2, Name: "Gorro", Image: "gorro.jpg", Price: 4500, Quantity: 1})

	data, err := json.Marshal(cart)
	require.NoError(t, err)

	var restored Cart
	require.NoError(t, json.Unmarshal(data, &restored))

	if diff := cmp.Diff(cart, &restored, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("cart changed across serialization (-want +got):\n%s", diff)
	}
	assert.Equal(t, cart.TotalItems(), restored.TotalItems())
	assert.Equal(t, cart.TotalPrice(), restored.TotalPrice())
}
