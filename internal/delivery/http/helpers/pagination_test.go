package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query   string
		want    domain.PaginationParams
		wantErr string
	}{
		{query: "", want: domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{query: "?page=3&page_size=10", want: domain.PaginationParams{Page: 3, PageSize: 10}},
		{query: "?page_size=1000", want: domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{query: "?page=0", wantErr: "page must be a positive integer"},
		{query: "?page_size=-5", wantErr: "page_size must be a positive integer"},
		{query: "?page=abc&page_size=x", wantErr: "page must be a positive integer; page_size must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/events/ev-1/registrations"+tt.query, nil)
			got, err := ParsePagination(r)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t,
		PaginationMeta{Page: 2, PageSize: 10, Total: 21, TotalPages: 3, HasNext: true},
		NewPaginationMeta(domain.PaginationParams{Page: 2, PageSize: 10}, 21))
	assert.False(t, NewPaginationMeta(domain.PaginationParams{Page: 3, PageSize: 10}, 21).HasNext)
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1}, 5).TotalPages)
}
