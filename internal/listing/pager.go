package listing

// DefaultWindow is the number of page buttons shown around the current page.
const DefaultWindow = 5

// Item is one element of the pagination control: a page button or an
// ellipsis gap.
type Item struct {
	Page     int // zero-based; -1 for an ellipsis
	Label    string
	Current  bool
	Ellipsis bool
}

// Clamp keeps page in [0, totalPages-1]; with no pages the result is 0.
func Clamp(page, totalPages int) int {
	if totalPages <= 0 || page < 0 {
		return 0
	}
	if page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// Prev is the page before current, never below 0.
func Prev(current, totalPages int) int {
	return Clamp(current-1, totalPages)
}

// Next is the page after current, never past the last page.
func Next(current, totalPages int) int {
	return Clamp(current+1, totalPages)
}

// Range returns the 1-based inclusive bounds of the rows shown on page
// (zero-based) for the given size and total. An empty list yields 0, 0.
func Range(page, size, total int) (from, to int) {
	if total <= 0 || size <= 0 {
		return 0, 0
	}
	from = page*size + 1
	to = min((page+1)*size, total)
	if from > total {
		return total, total
	}
	return from, to
}

// Window lays out at most maxButtons numbered buttons centred on current.
// The first and last pages are always present, separated from the window by
// an ellipsis when the gap is more than one page.
func Window(current, totalPages, maxButtons int) []Item {
	if totalPages <= 0 {
		return nil
	}
	if maxButtons < 1 {
		maxButtons = DefaultWindow
	}
	current = Clamp(current, totalPages)

	start := current - maxButtons/2
	end := start + maxButtons - 1
	if start < 0 {
		start, end = 0, maxButtons-1
	}
	if end > totalPages-1 {
		end = totalPages - 1
		start = max(0, end-maxButtons+1)
	}

	var items []Item
	if start > 0 {
		items = append(items, button(0, current))
		if start > 1 {
			items = append(items, Item{Page: -1, Label: "…", Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		items = append(items, button(p, current))
	}
	if end < totalPages-1 {
		if end < totalPages-2 {
			items = append(items, Item{Page: -1, Label: "…", Ellipsis: true})
		}
		items = append(items, button(totalPages-1, current))
	}
	return items
}

func button(p, current int) Item {
	return Item{Page: p, Label: itoa(p + 1), Current: p == current}
}
