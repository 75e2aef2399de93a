package core

import (
	"math"
	"strings"
)

// SortDirection orders a listing column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc in any case and defaults to ascending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// SortOrder is one `sort=property,direction` clause.
type SortOrder struct {
	Property  string
	Direction SortDirection
}

// PageRequest selects a zero-based page of a listing.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

// Offset returns the number of rows to skip, saturating instead of overflowing.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is a bounded slice of a listing plus the total row count.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

// NewPage builds a page for req. Items is never nil so it encodes as [].
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &Page[T]{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}
}

// TotalPages returns the number of pages, at least one.
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()-1
}

// HasPrevious reports whether an earlier page exists.
func (p *Page[T]) HasPrevious() bool {
	return p.Page > 0
}
