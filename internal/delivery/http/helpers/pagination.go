package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"eventreg/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing
// values take the defaults and a page_size above MaxPageSize is clamped, but
// anything that is not a positive integer is a validation error.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	var problems []string
	page, ok := positiveParam(q.Get("page"), DefaultPage)
	if !ok {
		problems = append(problems, "page must be a positive integer")
	}
	size, ok := positiveParam(q.Get("page_size"), DefaultPageSize)
	if !ok {
		problems = append(problems, "page_size must be a positive integer")
	}
	if len(problems) > 0 {
		return domain.PaginationParams{}, domain.Validation(problems...)
	}
	return domain.PaginationParams{Page: page, PageSize: min(size, MaxPageSize)}, nil
}

func positiveParam(raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil && v >= 1
}

// PaginationMeta describes where a list page sits in the full result.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginationMeta describes page p of a result holding total rows.
func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	meta := PaginationMeta{Page: p.Page, PageSize: p.PageSize, Total: total}
	if p.PageSize > 0 {
		meta.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	meta.HasNext = p.Page < meta.TotalPages
	return meta
}
