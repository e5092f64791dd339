package activitylog

// PageInfo is the 1-indexed page view presented to operators.
type PageInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// OffsetLimit is the query-side form of a page position.
type OffsetLimit struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ToOffsetLimit converts a page view into an offset/limit pair. Pages and sizes below one are raised to
// the first page and the default size.
func ToOffsetLimit(info PageInfo) OffsetLimit {
	page := info.Page
	if page < 1 {
		page = 1
	}
	size := info.PageSize
	if size < 1 {
		size = DefaultLimit
	}
	return OffsetLimit{Offset: (page - 1) * size, Limit: size}
}

// ToPageInfo projects server pagination into the page view.
func ToPageInfo(p Pagination) PageInfo {
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return PageInfo{
		Page:     offset/limit + 1,
		PageSize: limit,
		Total:    p.Total,
	}
}

// TotalPages returns the number of pages needed to show Total entries.
func (p PageInfo) TotalPages() int {
	if p.PageSize < 1 || p.Total <= 0 {
		return 1
	}
	pages := int(p.Total / int64(p.PageSize))
	if p.Total%int64(p.PageSize) != 0 {
		pages++
	}
	return pages
}

// PaginationFor builds the pagination a page of n entries at ol out of total would report.
func PaginationFor(ol OffsetLimit, n int, total int64) Pagination {
	return Pagination{
		Total:   total,
		Limit:   ol.Limit,
		Offset:  ol.Offset,
		HasMore: int64(ol.Offset+n) < total,
	}
}
