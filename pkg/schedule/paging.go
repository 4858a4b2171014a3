package schedule

import "sort"

// FilterByPrefix keeps rooms whose name starts with prefix; "all" or an
// empty prefix disables filtering. The result is always sorted.
func FilterByPrefix(rooms []string, prefix string) []string {
	filtered := make([]string, 0, len(rooms))
	if prefix == "" || prefix == "all" {
		filtered = append(filtered, rooms...)
	} else {
		for _, room := range rooms {
			if len(room) >= len(prefix) && room[:len(prefix)] == prefix {
				filtered = append(filtered, room)
			}
		}
	}
	sort.Strings(filtered)
	return filtered
}

// CorpusPrefixes lists the distinct two-digit building prefixes present in
// the room names.
func CorpusPrefixes(rooms []string) []string {
	seen := make(map[string]bool)
	for _, room := range rooms {
		if len(room) >= 2 && isDigit(room[0]) && isDigit(room[1]) {
			seen[room[:2]] = true
		}
	}
	prefixes := make([]string, 0, len(seen))
	for prefix := range seen {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Paginate returns the page-th chunk (0-indexed) of items.
func Paginate(items []string, page, pageSize int) []string {
	if pageSize <= 0 || page < 0 {
		return nil
	}
	start := page * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Pages returns the page count for total items, at least 1 so an empty
// result still renders as one page.
func Pages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
