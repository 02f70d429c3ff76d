package products

import (
	"context"
	"sort"
	"sync"
	"testing"

	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]Product
	lists    int
	gets     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[uuid.UUID]Product{}}
}

func (f *fakeRepo) Create(_ context.Context, p *Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.products[p.ID] = *p
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, apply func(*Product) error) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	if err := apply(&p); err != nil {
		return nil, err
	}
	f.products[id] = p
	return &p, nil
}

func (f *fakeRepo) List(_ context.Context, q ListQuery) ([]Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []Product
	for _, p := range f.products {
		if q.Category == "" || p.Category == q.Category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, int64(len(out)), nil
}

func newCachedService(t *testing.T) (*service, *fakeRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	return NewService(repo, cache.NewService(client)).(*service), repo
}

func TestCreateProduct_Defaults(t *testing.T) {
	svc, _ := newCachedService(t)

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{Title: "  Enamel pin ", Price: 4.5, Stock: 12})
	require.NoError(t, err)
	assert.Equal(t, "Enamel pin", p.Title)
	assert.Equal(t, CategoryOther, p.Category)
	assert.Equal(t, 12, p.Stock)
	assert.Zero(t, p.SoldCount)
}

func TestListProducts_CachesUnfilteredListing(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Title: "Map poster", Price: 15, Category: CategoryTravel, Stock: 3})
	require.NoError(t, err)

	q := ListQuery{Page: 1, Limit: 20}
	first, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)
	_, err = svc.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
	assert.Len(t, first.Products, 1)
	assert.EqualValues(t, 1, first.Pagination.Total)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{Title: "Tote bag", Price: 9, Category: CategoryFashion, Stock: 5})
	require.NoError(t, err)
	after, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.Len(t, after.Products, 2, "creating a product drops cached listings")

	filtered, err := svc.ListProducts(ctx, ListQuery{Page: 1, Limit: 20, Category: CategoryFashion})
	require.NoError(t, err)
	require.Len(t, filtered.Products, 1)
	assert.Equal(t, "Tote bag", filtered.Products[0].Title)
}

func TestGetAndUpdateProduct(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Title: "Vinyl", Price: 30, Category: CategoryMusic, Stock: 2})
	require.NoError(t, err)

	_, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets)

	stock := 8
	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock, "update evicts the cached detail")

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductRequest{Stock: &stock})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}
