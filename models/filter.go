package models

import (
	"strings"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is the paging and sorting part shared by list endpoints.
type ListQuery struct {
	Page  int
	Limit int
	// Sort is a field name, optionally prefixed with "-" for descending order.
	Sort string
}

// Offset returns the number of rows to skip for the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Normalize clamps page and limit and applies the default sort.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if strings.TrimSpace(q.Sort) == "" {
		q.Sort = "-date"
	}
}

// SortField splits Sort into the field name and whether it is descending.
func (q ListQuery) SortField() (field string, desc bool) {
	s := strings.TrimSpace(q.Sort)
	if strings.HasPrefix(s, "-") {
		return s[1:], true
	}
	return strings.TrimPrefix(s, "+"), false
}

// ExpenseFilter narrows an owner's expense listing. Zero values do not filter.
type ExpenseFilter struct {
	ListQuery
	Category    string
	IsRecurring *bool
	StartDate   time.Time
	EndDate     time.Time
	// Tags match when the expense carries any of them.
	Tags []string
}

type IncomeFilter struct {
	ListQuery
	Product   string
	StartDate time.Time
	EndDate   time.Time
}

// Pagination is returned alongside a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func NewPagination(q ListQuery, total int) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{Page: q.Page, Limit: q.Limit, Pages: pages}
}
