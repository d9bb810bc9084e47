package pagination

import "math"

// DefaultPerPage is the fixed page size of list views.
const DefaultPerPage = 20

// DefaultMaxLinks is how many numbered page links a pager shows at most.
const DefaultMaxLinks = 5

// Pagination represents pagination metadata of a page-based list
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
	Links       []int `json:"links"`
}

// TotalPages returns ceil(total / perPage); zero items means zero pages.
func TotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

// ClampPage keeps page inside [1, totalPages]. With no pages it is 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Window returns the numbered page links to render: every page when there
// are at most maxLinks, otherwise a maxLinks-wide window centered on current
// and clamped to [1, totalPages].
func Window(current, totalPages, maxLinks int) []int {
	if totalPages <= 0 || maxLinks <= 0 {
		return []int{}
	}
	start, end := 1, totalPages
	if totalPages > maxLinks {
		half := maxLinks / 2
		start = current - half
		if start < 1 {
			start = 1
		}
		end = start + maxLinks - 1
		if end > totalPages {
			end = totalPages
			start = end - maxLinks + 1
		}
	}
	links := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		links = append(links, p)
	}
	return links
}

// NewPagination creates a new Pagination response
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := TotalPages(total, perPage)
	page = ClampPage(page, totalPages)

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		Links:       Window(page, totalPages, DefaultMaxLinks),
	}
}

// Slice returns the items of the requested page of items.
func Slice[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		return []T{}
	}
	start := (page - 1) * perPage
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
