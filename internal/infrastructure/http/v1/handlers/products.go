package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/domain/inventory"
	"opsboard/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog, stock mutations, and the
// cached inventory statistics views.
type ProductHandler struct {
	BaseHandler
	service *product.Service
	cache   *inventory.StatsCache
}

func NewProductHandler(service *product.Service, cache *inventory.StatsCache) *ProductHandler {
	return &ProductHandler{service: service, cache: cache}
}

// statsKey is the deterministic cache key for a stats view.
func statsKey(lowOnly bool, categoryID *int64) string {
	if categoryID == nil {
		return fmt.Sprintf("stats:low=%t:cat=all", lowOnly)
	}
	return fmt.Sprintf("stats:low=%t:cat=%d", lowOnly, *categoryID)
}

// dropStatsViews invalidates every cached view a product in the given
// category can appear in. Used after stock quantity changes, which the
// min-stock reconciler does not cover. Sale mutations go through the
// same path since they move remains too.
func dropStatsViews(cache *inventory.StatsCache, categoryID int64) {
	for _, low := range []bool{false, true} {
		cache.Invalidate(statsKey(low, nil))
		cache.Invalidate(statsKey(low, &categoryID))
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		h.Error(c, err)
		return
	}
	q.Defaults()

	result, err := h.service.List(c.Request.Context(), product.ListFilter{
		CategoryID:   q.CategoryID,
		Search:       q.Search,
		LowStockOnly: q.LowStock,
		Threshold:    q.Threshold,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToProduct()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	dropStatsViews(h.cache, p.CategoryID)
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToProduct()
	if err != nil {
		h.Error(c, err)
		return
	}
	p.ID = id

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	dropStatsViews(h.cache, p.CategoryID)
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	dropStatsViews(h.cache, p.CategoryID)
	c.JSON(http.StatusOK, dto.IDResponse{ID: id})
}

// ReceiveStock books a stock receipt.
func (h *ProductHandler) ReceiveStock(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.ReceiveStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	dropStatsViews(h.cache, p.CategoryID)
	c.JSON(http.StatusOK, p)
}

// UpdateMinStock changes a product's threshold and reconciles the
// cached stats views in place instead of dropping them.
func (h *ProductHandler) UpdateMinStock(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.MinStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	update, err := h.service.UpdateMinStock(c.Request.Context(), id, req.MinStock)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.ApplyMinStockChange(inventory.MinStockChange{
		ProductID:    update.Product.ID,
		CategoryID:   update.Product.CategoryID,
		Remains:      update.Product.Remains,
		PrevMinStock: update.PrevMinStock,
		NewMinStock:  update.NewMinStock,
		Item:         update.Product.LineItem(),
	})
	c.JSON(http.StatusOK, update)
}

// Stats serves the inventory statistics view, cache-first.
func (h *ProductHandler) Stats(c *gin.Context) {
	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		h.Error(c, err)
		return
	}
	h.serveStats(c, q)
}

// LowStock serves the low-stock dashboard widget: the statistics view
// restricted to items at or below their threshold.
func (h *ProductHandler) LowStock(c *gin.Context) {
	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		h.Error(c, err)
		return
	}
	q.LowStock = true
	h.serveStats(c, q)
}

func (h *ProductHandler) serveStats(c *gin.Context, q dto.ProductListQuery) {
	key := statsKey(q.LowStock, q.CategoryID)
	if entry, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, statsResponse(entry))
		return
	}

	result, err := h.service.FullList(c.Request.Context(), product.ListFilter{
		CategoryID:   q.CategoryID,
		LowStockOnly: q.LowStock,
		Threshold:    q.Threshold,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]inventory.LineItem, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, result.Items[i].LineItem())
	}
	filter := inventory.EntryFilter{LowOnly: q.LowStock, CategoryID: q.CategoryID}
	if err := h.cache.Prime(key, filter, items); err != nil {
		h.Error(c, err)
		return
	}

	entry, _ := h.cache.Get(key)
	c.JSON(http.StatusOK, statsResponse(entry))
}

func statsResponse(entry inventory.Entry) gin.H {
	return gin.H{
		"stats":      entry.Stats,
		"items":      entry.Items,
		"totalCount": entry.TotalCount,
	}
}
