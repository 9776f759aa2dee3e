package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFavoritesBackend struct {
	favorites []int64
	listErr   error
	toggleErr error
	toggled   []int64
}

func (m *mockFavoritesBackend) Favorites(context.Context, string) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.favorites, nil
}

func (m *mockFavoritesBackend) ToggleFavorite(_ context.Context, _ string, productID int64) error {
	if m.toggleErr != nil {
		return m.toggleErr
	}
	m.toggled = append(m.toggled, productID)
	return nil
}

func setupFavorites(t *testing.T, b favoritesBackend) (*FavoritesService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewFavoritesService(client, b), mr
}

func TestFavoritesList_RefreshesMirror(t *testing.T) {
	b := &mockFavoritesBackend{favorites: []int64{1, 5, 9}}
	sut, mr := setupFavorites(t, b)

	ids, err := sut.List(context.Background(), "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5, 9}, ids)

	members, err := mr.SMembers(favoritesKey("maria@example.com"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "5", "9"}, members)
}

func TestFavoritesToggle_AddsWhenMissing(t *testing.T) {
	b := &mockFavoritesBackend{}
	sut, mr := setupFavorites(t, b)

	favorite, err := sut.Toggle(context.Background(), "maria@example.com", 5)
	require.NoError(t, err)
	assert.True(t, favorite)
	assert.Equal(t, []int64{5}, b.toggled)

	isMember, err := mr.SIsMember(favoritesKey("maria@example.com"), "5")
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestFavoritesToggle_RemovesWhenPresent(t *testing.T) {
	b := &mockFavoritesBackend{}
	sut, mr := setupFavorites(t, b)
	mr.SAdd(favoritesKey("maria@example.com"), "5")

	favorite, err := sut.Toggle(context.Background(), "maria@example.com", 5)
	require.NoError(t, err)
	assert.False(t, favorite)

	isMember, err := mr.SIsMember(favoritesKey("maria@example.com"), "5")
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestFavoritesToggle_RollsBackOnBackendFailure(t *testing.T) {
	b := &mockFavoritesBackend{toggleErr: fmt.Errorf("backend unavailable")}
	sut, mr := setupFavorites(t, b)

	favorite, err := sut.Toggle(context.Background(), "maria@example.com", 5)
	require.ErrorContains(t, err, "backend unavailable")
	assert.False(t, favorite, "state reports the pre-toggle value after rollback")

	isMember, err := mr.SIsMember(favoritesKey("maria@example.com"), "5")
	require.NoError(t, err)
	assert.False(t, isMember, "the optimistic add must be reverted")
}

func TestFavoritesToggle_RollbackRestoresMembership(t *testing.T) {
	b := &mockFavoritesBackend{toggleErr: fmt.Errorf("backend unavailable")}
	sut, mr := setupFavorites(t, b)
	mr.SAdd(favoritesKey("maria@example.com"), "5")

	favorite, err := sut.Toggle(context.Background(), "maria@example.com", 5)
	require.Error(t, err)
	assert.True(t, favorite)

	isMember, err := mr.SIsMember(favoritesKey("maria@example.com"), "5")
	require.NoError(t, err)
	assert.True(t, isMember, "the optimistic removal must be reverted")
}
