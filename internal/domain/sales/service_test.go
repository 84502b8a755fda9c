package sales

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/catalogs/product"
)

// --- In-memory fakes ---

type fakeProductRepo struct {
	products map[int64]product.Product
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error { panic("unused") }
func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error { panic("unused") }
func (r *fakeProductRepo) Delete(ctx context.Context, id int64) error           { panic("unused") }
func (r *fakeProductRepo) FindByArticle(ctx context.Context, a string) (*product.Product, error) {
	panic("unused")
}
func (r *fakeProductRepo) List(ctx context.Context, f product.ListFilter) (product.ListResult, error) {
	panic("unused")
}
func (r *fakeProductRepo) UpdateMinStock(ctx context.Context, id int64, m *int) error {
	panic("unused")
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	return &p, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return apperror.NewNotFound("product", id)
	}
	p.Remains += delta
	r.products[id] = p
	return nil
}

type fakeSaleRepo struct {
	sales  map[int64]Sale
	nextID int64
}

func (r *fakeSaleRepo) Create(ctx context.Context, sale *Sale) error {
	r.nextID++
	sale.ID = r.nextID
	r.sales[sale.ID] = *sale
	return nil
}

func (r *fakeSaleRepo) Update(ctx context.Context, sale *Sale) error {
	if _, ok := r.sales[sale.ID]; !ok {
		return apperror.NewNotFound("sale", sale.ID)
	}
	r.sales[sale.ID] = *sale
	return nil
}

func (r *fakeSaleRepo) Delete(ctx context.Context, id int64) error {
	delete(r.sales, id)
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, id int64) (*Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	return &s, nil
}

func (r *fakeSaleRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	var items []Sale
	for _, s := range r.sales {
		items = append(items, s)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return ListResult{Items: items, TotalCount: len(items)}, nil
}

// fakeTxManager snapshots both stores and restores them when fn fails,
// mirroring the all-or-nothing transaction contract.
type fakeTxManager struct {
	products *fakeProductRepo
	sales    *fakeSaleRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	productSnapshot := make(map[int64]product.Product, len(m.products.products))
	for k, v := range m.products.products {
		productSnapshot[k] = v
	}
	saleSnapshot := make(map[int64]Sale, len(m.sales.sales))
	for k, v := range m.sales.sales {
		saleSnapshot[k] = v
	}
	nextID := m.sales.nextID

	if err := fn(ctx); err != nil {
		m.products.products = productSnapshot
		m.sales.sales = saleSnapshot
		m.sales.nextID = nextID
		return err
	}
	return nil
}

func newFixture() (*Service, *fakeProductRepo, *fakeSaleRepo) {
	products := &fakeProductRepo{products: map[int64]product.Product{
		1: {
			ID:            1,
			Name:          "Widget",
			CategoryID:    1,
			ArticleNumber: "W-001",
			PurchasePrice: types.MustMoney("60"),
			SalePrice:     types.MustMoney("100"),
			Remains:       5,
		},
	}}
	saleRepo := &fakeSaleRepo{sales: map[int64]Sale{}}
	txm := &fakeTxManager{products: products, sales: saleRepo}
	return NewService(saleRepo, products, txm), products, saleRepo
}

var saleDay = time.Date(2026, time.August, 12, 10, 30, 0, 0, time.UTC)

func TestCreate_DecrementsStockAndDerivesTotal(t *testing.T) {
	svc, products, _ := newFixture()

	sale, err := svc.Create(context.Background(), Input{
		SaleDate:     saleDay,
		ProductID:    1,
		QuantitySold: 3,
	})
	require.NoError(t, err)

	assert.True(t, sale.TotalPrice.Equal(types.MustMoney("300")))
	assert.Equal(t, time.Date(2026, time.August, 12, 0, 0, 0, 0, time.UTC), sale.SaleDate)
	assert.Equal(t, 2, products.products[1].Remains)
}

func TestCreate_InsufficientStockRollsBack(t *testing.T) {
	svc, products, saleRepo := newFixture()

	_, err := svc.Create(context.Background(), Input{
		SaleDate:     saleDay,
		ProductID:    1,
		QuantitySold: 6,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, 5, products.products[1].Remains, "remains must be unchanged after a failed sale")
	assert.Empty(t, saleRepo.sales)
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Create(context.Background(), Input{SaleDate: saleDay, ProductID: 1, QuantitySold: 0})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdate_AdjustsStockByDelta(t *testing.T) {
	svc, products, _ := newFixture()

	sale, err := svc.Create(context.Background(), Input{SaleDate: saleDay, ProductID: 1, QuantitySold: 2})
	require.NoError(t, err)
	require.Equal(t, 3, products.products[1].Remains)

	updated, err := svc.Update(context.Background(), sale.ID, Input{
		SaleDate:     saleDay,
		ProductID:    1,
		QuantitySold: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, products.products[1].Remains)
	assert.True(t, updated.TotalPrice.Equal(types.MustMoney("400")))
}

func TestUpdate_DeltaExceedingStockRollsBack(t *testing.T) {
	svc, products, saleRepo := newFixture()

	sale, err := svc.Create(context.Background(), Input{SaleDate: saleDay, ProductID: 1, QuantitySold: 2})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), sale.ID, Input{
		SaleDate:     saleDay,
		ProductID:    1,
		QuantitySold: 9,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, 3, products.products[1].Remains)
	assert.Equal(t, 2, saleRepo.sales[sale.ID].QuantitySold)
}

func TestUpdate_RederivesPriceFromCurrentSalePrice(t *testing.T) {
	svc, products, _ := newFixture()

	sale, err := svc.Create(context.Background(), Input{SaleDate: saleDay, ProductID: 1, QuantitySold: 2})
	require.NoError(t, err)
	require.True(t, sale.TotalPrice.Equal(types.MustMoney("200")))

	// Price raised after the original sale: the update uses the current
	// price, not the historical one.
	p := products.products[1]
	p.SalePrice = types.MustMoney("150")
	products.products[1] = p

	updated, err := svc.Update(context.Background(), sale.ID, Input{
		SaleDate:     saleDay,
		ProductID:    1,
		QuantitySold: 2,
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(types.MustMoney("300")))
}

func TestDelete_RestoresStock(t *testing.T) {
	svc, products, saleRepo := newFixture()

	sale, err := svc.Create(context.Background(), Input{SaleDate: saleDay, ProductID: 1, QuantitySold: 4})
	require.NoError(t, err)
	require.Equal(t, 1, products.products[1].Remains)

	require.NoError(t, svc.Delete(context.Background(), sale.ID))

	assert.Equal(t, 5, products.products[1].Remains)
	assert.Empty(t, saleRepo.sales)
}
