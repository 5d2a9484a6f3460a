package util

import "strconv"

const MaxPageSize = 100

// Calculate turns a 1-based page and a page size into an offset. Sizes
// outside (0, MaxPageSize] fall back to def.
func Calculate(page, size, def int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = def
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ParsePage reads a 1-based page number; anything unusable is page 1.
func ParsePage(raw string) int {
	return max(ParseIntDefault(raw, 1), 1)
}
