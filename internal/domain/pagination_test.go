package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name         string
		pagination   Pagination
		totalRecords int
		wantOffset   int
		wantMetadata Metadata
	}{
		{
			name:         "first page",
			pagination:   Pagination{Page: 1, PageSize: 10},
			totalRecords: 25,
			wantOffset:   0,
			wantMetadata: Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 3, PageSize: 10, TotalRecords: 25},
		},
		{
			name:         "exact last page",
			pagination:   Pagination{Page: 2, PageSize: 5},
			totalRecords: 10,
			wantOffset:   5,
			wantMetadata: Metadata{CurrentPage: 2, FirstPage: 1, LastPage: 2, PageSize: 5, TotalRecords: 10},
		},
		{
			name:         "no records",
			pagination:   Pagination{Page: 1, PageSize: 10},
			wantOffset:   0,
			wantMetadata: Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 0, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pagination.PageSize, tt.pagination.Limit())
			assert.Equal(t, tt.wantOffset, tt.pagination.Offset())
			assert.Equal(t, tt.wantMetadata, *tt.pagination.Metadata(tt.totalRecords))
		})
	}
}
