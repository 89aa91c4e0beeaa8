// Package pager computes page windows. It holds no state, the current page lives in the URL.
package pager

import "github.com/matst80/slask-catalog/pkg/types"

const (
	MinPageSize = 1
	MaxPageSize = 50
)

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// TotalPages is ceil(total/size), never less than one so an empty result still has a page.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < MinPageSize || totalCount <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}

func Clamp(requestedPage, totalPages int) int {
	return clamp(requestedPage, 1, max(totalPages, 1))
}

func ClampPageSize(size, defaultSize, limit int) int {
	if size <= 0 {
		size = defaultSize
	}
	return clamp(size, MinPageSize, min(limit, MaxPageSize))
}

// Info is the page metadata handed to the presentation layer.
type Info struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int   `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
	Numbers    []int `json:"numbers"`
}

// Resolve clamps the requested page against the total and fills the page metadata.
func Resolve(state types.PageState, totalCount int) Info {
	totalPages := TotalPages(totalCount, state.PageSize)
	page := Clamp(state.Page, totalPages)
	return Info{
		Page:       page,
		PageSize:   state.PageSize,
		TotalCount: max(totalCount, 0),
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Numbers:    Numbers(page, totalPages, 5),
	}
}

// Window is the offset/limit pair for a server side page.
func Window(state types.PageState) types.Window {
	return types.Window{
		Offset: state.Offset(),
		Limit:  state.PageSize,
	}
}

// Slice cuts a client side page out of the full reconciled list.
func Slice[T any](items []T, page, pageSize int) []T {
	if pageSize < MinPageSize {
		return items
	}
	start := (max(page, 1) - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// Numbers returns at most span page numbers centered on the current page.
func Numbers(current, totalPages, span int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	span = clamp(span, 1, totalPages)
	start := clamp(current-span/2, 1, totalPages-span+1)
	ret := make([]int, span)
	for i := range ret {
		ret[i] = start + i
	}
	return ret
}
