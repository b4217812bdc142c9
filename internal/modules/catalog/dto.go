package catalog

import "studiofinder/internal/discovery"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListStudiosQuery binds GET /studios. Date is validated but does not narrow
// the listing.
type ListStudiosQuery struct {
	Location string `form:"location" validate:"max=255"`
	Date     string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	Limit    int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (q ListStudiosQuery) filters() StudioFilters {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return StudioFilters{Location: q.Location, Limit: limit, Offset: (page - 1) * limit}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type StudioList struct {
	Studios    []*discovery.Studio `json:"studios"`
	Pagination Pagination          `json:"pagination"`
}
