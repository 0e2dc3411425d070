package domain

// Pagination selects one page of a listing. Page starts at 1.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Metadata describes the page that was served out of totalRecords.
func (p Pagination) Metadata(totalRecords int) *Metadata {
	lastPage := 0
	if p.PageSize > 0 {
		lastPage = (totalRecords + p.PageSize - 1) / p.PageSize
	}

	return &Metadata{
		CurrentPage:  p.Page,
		FirstPage:    1,
		LastPage:     lastPage,
		PageSize:     p.PageSize,
		TotalRecords: totalRecords,
	}
}

type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}
