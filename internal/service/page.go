package service

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// window emulates offset pagination over rows fetched with a plain
// LIMIT: the store only takes the first N of a range scan, so callers
// fetch offset+limit rows and this discards the first offset of them.
// Deep pages therefore cost O(offset + limit) rows, not O(limit).
func window[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
