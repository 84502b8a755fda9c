package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/domain/inventory"
	"opsboard/internal/domain/sales"
	"opsboard/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sale ledger. Sales move product remains, so
// every mutation drops the cached stats views the product appears in.
type SaleHandler struct {
	BaseHandler
	service  *sales.Service
	products *product.Service
	cache    *inventory.StatsCache
}

func NewSaleHandler(service *sales.Service, products *product.Service, cache *inventory.StatsCache) *SaleHandler {
	return &SaleHandler{service: service, products: products, cache: cache}
}

// invalidateStatsFor drops the stats views covering the sold product.
// When the category lookup fails the uncategorized views are dropped
// anyway so the global counters never go stale.
func (h *SaleHandler) invalidateStatsFor(ctx context.Context, productID int64) {
	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.cache.Invalidate(statsKey(false, nil))
		h.cache.Invalidate(statsKey(true, nil))
		return
	}
	dropStatsViews(h.cache, p.CategoryID)
}

func (h *SaleHandler) List(c *gin.Context) {
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	sale, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.invalidateStatsFor(c.Request.Context(), sale.ProductID)
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.invalidateStatsFor(c.Request.Context(), sale.ProductID)
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	// The sale row is gone after the delete, so resolve its product first.
	sale, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.invalidateStatsFor(c.Request.Context(), sale.ProductID)
	c.JSON(http.StatusOK, dto.IDResponse{ID: id})
}
