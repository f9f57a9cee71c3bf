package gallery

// CanPrev reports whether an earlier page exists.
func CanPrev(offset int) bool {
	return offset > 0
}

// CanNext reports whether the collection continues past the current page.
func CanNext(offset, limit, total int) bool {
	return offset+limit < total
}

func PrevOffset(offset, limit int) int {
	next := offset - limit
	if next < 0 {
		return 0
	}
	return next
}

func NextOffset(offset, limit int) int {
	return offset + limit
}

// PageNumber returns the 1-based page index and page count for display.
func PageNumber(offset, limit, total int) (int, int) {
	if limit <= 0 {
		return 1, 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	page := offset/limit + 1
	if page > pages {
		page = pages
	}
	return page, pages
}
