package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages = ceil(total/limit).
func NewPagination(total, page, limit int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
