package dto

// PageRequest is the page selection of a list query. Zero values take the
// service defaults.
type PageRequest struct {
	Page     int `form:"page"      validate:"omitempty,gte=1"`
	PageSize int `form:"page_size" validate:"omitempty,gte=1,lte=50"`
}

// PageResponse is one page of a list.
type PageResponse[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasMore  bool `json:"hasMore"`
}

// NewPageResponse builds a page from the already sliced items.
func NewPageResponse[T any](items []T, total, page, pageSize int) PageResponse[T] {
	if items == nil {
		items = []T{}
	}

	return PageResponse[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  page*pageSize < total,
	}
}
