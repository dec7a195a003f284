// Package pagination implements the listing contract shared by the video and
// wiki endpoints: a 1-based page number, a bounded page size defaulting to
// 10, and a derived total page count.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size used when the client does not ask for one.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params is a parsed page/limit pair. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads page and limit from the query string. Absent, zero,
// negative or non-numeric values fall back to the defaults; oversized limits
// are clamped.
func FromRequest(r *http.Request) Params {
	return Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
}

// Parse builds Params from raw query values.
func Parse(pageStr, limitStr string) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total / limit). A request for a page beyond this
// yields an empty list, not an error.
func (p Params) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return int(pages)
}
