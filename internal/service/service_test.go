package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pokegram/feed/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	items       []domain.ItemRef
	listErr     error
	detailErr   map[string]error
	detailDelay func(name string)

	listCalls   atomic.Int32
	detailCalls atomic.Int32
	lastLimit   atomic.Int32
}

func (f *fakeClient) GetPokemonList(_ context.Context, offset, limit int) (*domain.ListingPage, error) {
	f.listCalls.Add(1)
	f.lastLimit.Store(int32(limit))
	if f.listErr != nil {
		return nil, f.listErr
	}

	end := min(offset+limit, len(f.items))
	start := min(offset, end)
	page := &domain.ListingPage{TotalCount: len(f.items), Items: f.items[start:end]}
	if end < len(f.items) {
		page.Next = &domain.Cursor{Offset: end, Limit: limit}
	}
	return page, nil
}

func (f *fakeClient) GetPokemonDetail(_ context.Context, name string) (*domain.ItemDetail, error) {
	f.detailCalls.Add(1)
	if f.detailDelay != nil {
		f.detailDelay(name)
	}
	if err := f.detailErr[name]; err != nil {
		return nil, err
	}
	return &domain.ItemDetail{ID: len(name), Name: name}, nil
}

func (f *fakeClient) Close() error { return nil }

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.ItemDetail
	getErr  error
}

func (c *fakeCache) Get(_ context.Context, name string) (*domain.ItemDetail, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	d, ok := c.entries[name]
	return d, ok, nil
}

func (c *fakeCache) Set(_ context.Context, name string, d *domain.ItemDetail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = d
	return nil
}

func refs(names ...string) []domain.ItemRef {
	out := make([]domain.ItemRef, len(names))
	for i, n := range names {
		out[i] = domain.ItemRef{Name: n, URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1)}
	}
	return out
}

func TestListPage_RespectsLimit(t *testing.T) {
	fc := &fakeClient{items: refs("a", "b", "c", "d", "e")}
	svc := NewService(fc, nil)

	for _, tc := range []struct{ offset, limit int }{{0, 1}, {0, 2}, {3, 5}, {5, 3}, {0, 100}} {
		page, err := svc.ListPage(context.Background(), tc.offset, tc.limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), tc.limit)
	}
}

func TestListPage_TruncatesOversizedPage(t *testing.T) {
	fc := &oversizedClient{fakeClient: fakeClient{items: refs("a", "b", "c")}}
	svc := NewService(fc, nil)

	page, err := svc.ListPage(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

type oversizedClient struct{ fakeClient }

func (o *oversizedClient) GetPokemonList(ctx context.Context, offset, _ int) (*domain.ListingPage, error) {
	return o.fakeClient.GetPokemonList(ctx, offset, 100)
}

func TestListPage_InvalidArguments(t *testing.T) {
	fc := &fakeClient{}
	svc := NewService(fc, nil)

	_, err := svc.ListPage(context.Background(), -1, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ListPage(context.Background(), 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Equal(t, int32(0), fc.listCalls.Load())
}

func TestListPage_PropagatesNetworkError(t *testing.T) {
	fc := &fakeClient{listErr: &domain.NetworkError{URL: "/pokemon", StatusCode: 503, Err: errors.New("unavailable")}}
	svc := NewService(fc, nil)

	_, err := svc.ListPage(context.Background(), 0, 20)
	assert.True(t, domain.IsNetwork(err))
	assert.Equal(t, int32(1), fc.listCalls.Load())
}

func TestFetcher(t *testing.T) {
	fc := &fakeClient{items: refs("a", "b", "c")}
	fetch := NewService(fc, nil).Fetcher()

	page, err := fetch(context.Background(), domain.Cursor{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Name)
}

func TestGetDetail_NotFound(t *testing.T) {
	fc := &fakeClient{detailErr: map[string]error{
		"missingno": &domain.NotFoundError{Resource: "pokemon", Name: "missingno"},
	}}
	svc := NewService(fc, nil)

	_, err := svc.GetDetail(context.Background(), "missingno")
	assert.True(t, domain.IsNotFound(err))
}

func TestGetDetail_UsesCache(t *testing.T) {
	fc := &fakeClient{}
	dc := &fakeCache{entries: map[string]*domain.ItemDetail{}}
	svc := NewService(fc, dc)

	first, err := svc.GetDetail(context.Background(), "pikachu")
	require.NoError(t, err)
	second, err := svc.GetDetail(context.Background(), "pikachu")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fc.detailCalls.Load())
}

func TestGetDetail_CachedUnderLookupName(t *testing.T) {
	fc := &fakeClient{}
	dc := &fakeCache{entries: map[string]*domain.ItemDetail{}}
	svc := NewService(fc, dc)

	for i := 0; i < 3; i++ {
		_, err := svc.GetDetail(context.Background(), "25")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), fc.detailCalls.Load())
	assert.Contains(t, dc.entries, "25")
}

func TestGetDetail_CacheFailureFallsThrough(t *testing.T) {
	fc := &fakeClient{}
	dc := &fakeCache{entries: map[string]*domain.ItemDetail{}, getErr: errors.New("redis down")}
	svc := NewService(fc, dc)

	detail, err := svc.GetDetail(context.Background(), "eevee")
	require.NoError(t, err)
	assert.Equal(t, "eevee", detail.Name)
	assert.Equal(t, int32(1), fc.detailCalls.Load())
}

func TestSearch_EmptyQueryMakesNoRequests(t *testing.T) {
	fc := &fakeClient{items: refs("charmander")}
	svc := NewService(fc, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := svc.Search(context.Background(), q, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, int32(0), fc.listCalls.Load())
	assert.Equal(t, int32(0), fc.detailCalls.Load())
}

func TestSearch_SubstringMatchFetchedConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	fc := &fakeClient{
		items: refs("charmander", "charizard", "squirtle"),
		detailDelay: func(string) {
			arrived.Done()
			select {
			case <-release:
			case <-time.After(2 * time.Second):
				// Only reached when fetches run one at a time.
			}
		},
	}
	svc := NewService(fc, nil)

	start := time.Now()
	results, err := svc.Search(context.Background(), "CHAR", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "charmander", results[0].Name)
	assert.Equal(t, "charizard", results[1].Name)
	assert.Equal(t, int32(searchWindow), fc.lastLimit.Load())
	assert.Less(t, time.Since(start), time.Second, "detail fetches must run concurrently")
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	fc := &fakeClient{items: refs("pidgey", "pidgeotto", "pidgeot", "rattata")}
	svc := NewService(fc, nil)

	results, err := svc.Search(context.Background(), "pidge", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "pidgey", results[0].Name)
	assert.Equal(t, "pidgeotto", results[1].Name)
	assert.Equal(t, int32(2), fc.detailCalls.Load())
}

func TestSearch_DefaultLimit(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = fmt.Sprintf("mon%d", i)
	}
	fc := &fakeClient{items: refs(names...)}
	svc := NewService(fc, nil)

	results, err := svc.Search(context.Background(), "mon", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultSearchLimit)
}

func TestSearch_NoMatches(t *testing.T) {
	fc := &fakeClient{items: refs("squirtle")}
	svc := NewService(fc, nil)

	results, err := svc.Search(context.Background(), "zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(0), fc.detailCalls.Load())
}

func TestSearch_OneDetailFailureFailsAll(t *testing.T) {
	fc := &fakeClient{
		items:     refs("charmander", "charizard"),
		detailErr: map[string]error{"charizard": &domain.NetworkError{URL: "/pokemon/charizard", Err: errors.New("reset")}},
	}
	svc := NewService(fc, nil)

	results, err := svc.Search(context.Background(), "char", 10)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, domain.IsNetwork(err))
}

func TestSearch_ListFailure(t *testing.T) {
	fc := &fakeClient{listErr: &domain.NetworkError{URL: "/pokemon", Err: errors.New("timeout")}}
	svc := NewService(fc, nil)

	_, err := svc.Search(context.Background(), "char", 10)
	assert.True(t, domain.IsNetwork(err))
}
