package dto

import (
	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/sales"
)

// SaleRequest records or edits a sale. The total is always derived
// server-side from the product's current sale price.
type SaleRequest struct {
	SaleDate     string `json:"saleDate" binding:"required"`
	ProductID    int64  `json:"productId" binding:"required"`
	QuantitySold int    `json:"quantitySold" binding:"required"`
}

// ToInput converts the request into domain sale input.
func (r *SaleRequest) ToInput() (sales.Input, error) {
	date, err := types.ParseDate(r.SaleDate, timeperiod.AnchorZone())
	if err != nil {
		return sales.Input{}, apperror.NewValidation("invalid sale date").WithDetail("saleDate", r.SaleDate)
	}
	return sales.Input{
		SaleDate:     date,
		ProductID:    r.ProductID,
		QuantitySold: r.QuantitySold,
	}, nil
}

// SaleListQuery narrows sale listings.
type SaleListQuery struct {
	PaginationRequest
	FromDate  string `form:"from"`
	ToDate    string `form:"to"`
	ProductID *int64 `form:"productId"`
}

// ToFilter converts the query into a domain list filter.
func (q *SaleListQuery) ToFilter() (sales.ListFilter, error) {
	q.Defaults()
	f := sales.ListFilter{ProductID: q.ProductID, Limit: q.Limit, Offset: q.Offset}

	if q.FromDate != "" {
		d, err := types.ParseDate(q.FromDate, timeperiod.AnchorZone())
		if err != nil {
			return sales.ListFilter{}, apperror.NewValidation("invalid from date").WithDetail("from", q.FromDate)
		}
		f.FromDate = &d
	}
	if q.ToDate != "" {
		d, err := types.ParseDate(q.ToDate, timeperiod.AnchorZone())
		if err != nil {
			return sales.ListFilter{}, apperror.NewValidation("invalid to date").WithDetail("to", q.ToDate)
		}
		end := types.DayEnd(d)
		f.ToDate = &end
	}
	return f, nil
}
