package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes one page of a result set. From and To are 1-based
// positions of the page's first and last item; both are 0 for an empty page.
func NewPagination(page, pageSize int, totalItems int64, itemsOnPage int) *Pagination {
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: TotalPages(totalItems, pageSize),
	}
	p.HasMore = int64(page) < p.TotalPages
	if itemsOnPage > 0 {
		p.From = (page-1)*pageSize + 1
		p.To = p.From + itemsOnPage - 1
	}
	return p
}

func TotalPages(totalItems int64, pageSize int) int64 {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + int64(pageSize) - 1) / int64(pageSize)
}
