package view

// Paginate slices one page out of an already-filtered collection. The
// requested page is clamped into [1, total], so out-of-range requests
// resolve to the nearest valid page instead of failing.
func Paginate[T any](items []T, page, pageSize int) (pageItems []T, current, totalPages int) {
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages = (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	current = page
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := (current - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], current, totalPages
}
