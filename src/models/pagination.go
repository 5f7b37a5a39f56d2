package models

import "math"

// PaginationParams holds the page window requested by the client.
type PaginationParams struct {
	Page  int    `json:"page" query:"page" example:"1"`
	Limit int    `json:"limit" query:"limit" example:"10"`
	Order string `json:"order" query:"order" example:"desc"` // asc/desc on createdAt
}

// PaginatedResponse wraps one page of results.
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	Total       int64       `json:"total"`
	Page        int         `json:"page"`
	Limit       int         `json:"limit"`
	TotalPages  int         `json:"totalPages"`
	HasNext     bool        `json:"hasNext"`
	HasPrevious bool        `json:"hasPrevious"`
}

// DefaultPagination is used for missing or invalid query values.
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Page:  1,
		Limit: 10,
		Order: "desc",
	}
}

// Normalize clamps the params into a usable window.
func (p PaginationParams) Normalize() PaginationParams {
	def := DefaultPagination()
	if p.Page < 1 {
		p.Page = def.Page
	}
	if p.Limit < 1 {
		p.Limit = def.Limit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Order != "asc" {
		p.Order = def.Order
	}
	return p
}

// NewPaginatedResponse builds the envelope for one page.
func NewPaginatedResponse(data interface{}, total int64, params PaginationParams) *PaginatedResponse {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginatedResponse{
		Data:        data,
		Total:       total,
		Page:        params.Page,
		Limit:       params.Limit,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}

// GetSkip returns how many items precede the page.
func (p *PaginationParams) GetSkip() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) bounds of the page inside n items.
func (p *PaginationParams) Window(n int) (int, int) {
	start := p.GetSkip()
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
