package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/domain/inventory"
	"opsboard/internal/domain/sales"
)

type memProductRepo struct {
	product.Repository
	products map[int64]*product.Product
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return apperror.NewNotFound("product", id)
	}
	p.Remains += delta
	return nil
}

type memSaleRepo struct {
	sales.Repository
	nextID int64
	store  map[int64]*sales.Sale
}

func (r *memSaleRepo) Create(_ context.Context, sale *sales.Sale) error {
	r.nextID++
	sale.ID = r.nextID
	cp := *sale
	r.store[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) Update(_ context.Context, sale *sales.Sale) error {
	cp := *sale
	r.store[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) Delete(_ context.Context, id int64) error {
	delete(r.store, id)
	return nil
}

func (r *memSaleRepo) GetByID(_ context.Context, id int64) (*sales.Sale, error) {
	s, ok := r.store[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	cp := *s
	return &cp, nil
}

// passTx runs fn directly; rollback is not exercised here.
type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newSaleTestRouter(t *testing.T) (*gin.Engine, *inventory.StatsCache, *memSaleRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	productRepo := &memProductRepo{products: map[int64]*product.Product{
		1: {
			ID:         1,
			Name:       "Widget",
			CategoryID: 7,
			SalePrice:  types.MustMoney("15"),
			Remains:    10,
		},
	}}
	saleRepo := &memSaleRepo{store: map[int64]*sales.Sale{}}

	cache := inventory.NewStatsCache()
	require.NoError(t, cache.Initialize(inventory.DefaultMinStock))

	saleService := sales.NewService(saleRepo, productRepo, passTx{})
	productService := product.NewService(productRepo, passTx{})
	h := NewSaleHandler(saleService, productService, cache)

	r := gin.New()
	r.POST("/sales", h.Create)
	r.PUT("/sales/:id", h.Update)
	r.DELETE("/sales/:id", h.Delete)
	return r, cache, saleRepo
}

// primeAllStatsViews puts an entry behind every key a category-7 product
// can appear under.
func primeAllStatsViews(t *testing.T, cache *inventory.StatsCache) []string {
	t.Helper()
	cat := int64(7)
	keys := []string{
		statsKey(false, nil),
		statsKey(true, nil),
		statsKey(false, &cat),
		statsKey(true, &cat),
	}
	items := []inventory.LineItem{{ID: 1, Quantity: 10, Price: types.MustMoney("15")}}
	for _, k := range keys {
		cache.Invalidate(k)
		require.NoError(t, cache.Prime(k, inventory.EntryFilter{}, items))
	}
	return keys
}

func assertAllDropped(t *testing.T, cache *inventory.StatsCache, keys []string) {
	t.Helper()
	for _, k := range keys {
		_, ok := cache.Get(k)
		assert.False(t, ok, "view %s should have been invalidated", k)
	}
}

func TestSaleMutations_DropCachedStatsViews(t *testing.T) {
	r, cache, saleRepo := newSaleTestRouter(t)

	keys := primeAllStatsViews(t, cache)
	body := []byte(`{"saleDate":"2026-08-10","productId":1,"quantitySold":2}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)
	assertAllDropped(t, cache, keys)
	require.Len(t, saleRepo.store, 1)

	keys = primeAllStatsViews(t, cache)
	body = []byte(`{"saleDate":"2026-08-10","productId":1,"quantitySold":3}`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/sales/1", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assertAllDropped(t, cache, keys)

	keys = primeAllStatsViews(t, cache)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sales/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assertAllDropped(t, cache, keys)
	require.Empty(t, saleRepo.store)
}

func TestSaleCreateFailure_KeepsCachedStatsViews(t *testing.T) {
	r, cache, _ := newSaleTestRouter(t)

	keys := primeAllStatsViews(t, cache)
	body := []byte(`{"saleDate":"2026-08-10","productId":1,"quantitySold":999}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body)))
	require.NotEqual(t, http.StatusCreated, w.Code)

	for _, k := range keys {
		_, ok := cache.Get(k)
		assert.True(t, ok, fmt.Sprintf("view %s should survive a rejected sale", k))
	}
}
