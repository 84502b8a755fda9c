// Package dto provides request/response shapes and query-string
// parsing for the API.
package dto

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Defaults clamps pagination values to sane bounds.
func (p *PaginationRequest) Defaults() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ListResponse wraps list results with pagination metadata.
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// IDResponse acknowledges a mutation with the affected id.
type IDResponse struct {
	ID any `json:"id"`
}
