package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mauthecat/tienda-sub000/internal/cache"
	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/repository"
)

type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, _ string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart = nil
	return nil
}

func (m *mockRepository) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func TestGetCart_Success(t *testing.T) {
	cart := &domain.Cart{
		SessionID: "sess-123",
		Items: []domain.CartItem{
			{ProductID: 1, Price: 6000, Quantity: 5},
			{ProductID: 2, Price: 4500, Quantity: 10},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mockRepo := &mockRepository{cart: cart}
	mockC := &mockCache{cart: nil}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "sess-123")
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Len(t, ret.Items, 2)
	assert.Equal(t, 15, ret.TotalItems())

	require.Eventually(t, func() bool {
		return mockC.getCart() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestGetCart_CacheHit(t *testing.T) {
	cart := &domain.Cart{
		SessionID: "sess-123",
		Items:     []domain.CartItem{{ProductID: 1, Quantity: 3}},
	}
	mockRepo := &mockRepository{cart: nil} // repo should NOT be called
	mockC := &mockCache{cart: cart}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "sess-123")
	require.NoError(t, err)
	assert.Len(t, ret.Items, 1)
}

func TestGetCart_MissingCart_ReturnsEmptyCart(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "sess-123")
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Equal(t, "sess-123", ret.SessionID)
	assert.True(t, ret.IsEmpty())
}

func TestGetCart_RepoError(t *testing.T) {
	mockRepo := &mockRepository{err: fmt.Errorf("database error")}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "sess-123")
	require.ErrorContains(t, err, "database error")
	assert.Nil(t, ret)
}

func TestAddItem_NewProduct(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{cart: &domain.Cart{SessionID: "sess-123"}}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.AddItem(context.Background(), "sess-123", domain.CartItem{
		ProductID: 1,
		Name:      "Polera",
		Price:     6000,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, 2, ret.Items[0].Quantity)
	assert.Len(t, mockRepo.getCart().Items, 1)

	// verify cache was invalidated
	require.Eventually(t, func() bool {
		return mockC.getCart() == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestAddItem_SameProductIncrementsQuantity(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewCartService(mockRepo, mockC)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, "sess-123", domain.CartItem{ProductID: 1, Price: 6000, Quantity: 1})
	require.NoError(t, err)
	ret, err := sut.AddItem(ctx, "sess-123", domain.CartItem{ProductID: 1, Price: 6000, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	assert.Equal(t, 3, ret.Items[0].Quantity)
	assert.Equal(t, 3, ret.TotalItems())
	assert.Equal(t, domain.Price(18000), ret.TotalPrice())
}

func TestAddItem_RepoError(t *testing.T) {
	mockRepo := &mockRepository{err: fmt.Errorf("database error")}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	_, err := sut.AddItem(context.Background(), "sess-123", domain.CartItem{ProductID: 1, Quantity: 5})
	require.ErrorContains(t, err, "database error")
}

func TestUpdateQuantity_RemovesAtZero(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		SessionID: "sess-123",
		Items:     []domain.CartItem{{ProductID: 1, Price: 5000, Quantity: 1}},
	}}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.UpdateQuantity(context.Background(), "sess-123", 1, -1)
	require.NoError(t, err)
	assert.Empty(t, ret.Items)
	assert.Empty(t, mockRepo.getCart().Items)
}

func TestUpdateQuantity_UnknownProduct(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		SessionID: "sess-123",
		Items:     []domain.CartItem{{ProductID: 1, Price: 5000, Quantity: 2}},
	}}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.UpdateQuantity(context.Background(), "sess-123", 99, 1)
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, 2, ret.Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		SessionID: "sess-123",
		Items: []domain.CartItem{
			{ProductID: 1, Quantity: 5},
			{ProductID: 2, Quantity: 10},
		},
	}}
	mockC := &mockCache{cart: mockRepo.cart}

	sut := NewCartService(mockRepo, mockC)
	ret, err := sut.RemoveItem(context.Background(), "sess-123", 1)
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, int64(2), ret.Items[0].ProductID)

	require.Eventually(t, func() bool {
		return mockC.getCart() == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestClearCart(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		SessionID: "sess-123",
		Items:     []domain.CartItem{{ProductID: 1, Quantity: 5}},
	}}
	mockC := &mockCache{cart: mockRepo.cart}

	sut := NewCartService(mockRepo, mockC)
	require.NoError(t, sut.ClearCart(context.Background(), "sess-123"))
	assert.Nil(t, mockRepo.getCart())

	require.Eventually(t, func() bool {
		return mockC.getCart() == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestClearCart_AlreadyEmpty(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, mockC)
	assert.NoError(t, sut.ClearCart(context.Background(), "sess-123"))
}
