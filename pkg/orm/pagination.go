package orm

import "gorm.io/gorm"

// ApplyPagination applies offset/limit for a 1-based page. Non-positive page
// or limit leaves the query unpaginated.
func ApplyPagination(db *gorm.DB, page, limit int) *gorm.DB {
	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		return db.Offset(offset).Limit(limit)
	}
	return db
}

// NormalizePage clamps user supplied paging to sane bounds.
func NormalizePage(page, limit, maxLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
