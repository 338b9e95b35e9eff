// Package utils holds the page bounds shared by the ops API and the tally
// service.
package utils

import "strconv"

// Page bounds for vote listings.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampInt parses s and bounds the result to [lo, hi]. An empty or malformed
// s yields def, which is not bounded.
func ClampInt(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if s == "" || err != nil {
		return def
	}
	return min(max(n, lo), hi)
}

// NormalizePage replaces a page below 1 with DefaultPage and a non-positive
// page size with DefaultPageSize, and caps the size at MaxPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, min(pageSize, MaxPageSize)
}
