package models

import "go.mongodb.org/mongo-driver/bson"

// PageQuery is a parsed listing request. Sort is already resolved to
// store field names.
type PageQuery struct {
	Page    int
	Limit   int
	Sort    bson.D
	Keyword string
}

func (q PageQuery) Skip() int64 {
	if q.Page < 1 {
		return 0
	}
	return int64(q.Page-1) * int64(q.Limit)
}

type Page[T any] struct {
	Documents  []T   `json:"documents"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](docs []T, total int64, q PageQuery) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return &Page[T]{
		Documents:  docs,
		TotalCount: total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: pages,
	}
}
