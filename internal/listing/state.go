// Package listing holds the pagination, search, filter and sort state of
// the list pages, and the pure arithmetic behind the pagination controls.
package listing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultSize is the page size used when the query does not set one.
	DefaultSize = 10
	// MaxSize bounds the page size a caller can request.
	MaxSize = 100
)

// State is the list state carried in the URL query of a list page.
// Page is zero-based, as the backend expects.
type State struct {
	Page    int
	Size    int
	Search  string
	Filters map[string]string
	SortBy  string
	Desc    bool
}

// Parse reads a State from query values. Only keys in filterKeys are kept
// as filters; everything else is ignored.
func Parse(q url.Values, filterKeys ...string) State {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	size, _ := strconv.Atoi(q.Get("size"))
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}

	s := State{
		Page:    page,
		Size:    size,
		Search:  strings.TrimSpace(q.Get("search")),
		Filters: map[string]string{},
		SortBy:  q.Get("sort"),
		Desc:    q.Get("order") == "desc",
	}
	for _, k := range filterKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			s.Filters[k] = v
		}
	}
	return s
}

// Filter returns the value of a filter, or "" when unset.
func (s State) Filter(key string) string {
	return s.Filters[key]
}

// WithFilter returns a copy with the filter set (or cleared when value is
// empty). Changing a filter always resets the page to 0.
func (s State) WithFilter(key, value string) State {
	next := s.clone()
	if value == "" {
		delete(next.Filters, key)
	} else {
		next.Filters[key] = value
	}
	next.Page = 0
	return next
}

// WithSearch returns a copy with the search term replaced and the page reset.
func (s State) WithSearch(term string) State {
	next := s.clone()
	next.Search = strings.TrimSpace(term)
	next.Page = 0
	return next
}

// WithPage returns a copy positioned on page p. No clamping happens here;
// use Clamp once the total number of pages is known.
func (s State) WithPage(p int) State {
	next := s.clone()
	next.Page = p
	return next
}

// WithSort toggles the direction when column is already the sort column,
// otherwise sorts ascending by column.
func (s State) WithSort(column string) State {
	next := s.clone()
	if next.SortBy == column {
		next.Desc = !next.Desc
	} else {
		next.SortBy = column
		next.Desc = false
	}
	return next
}

// Query encodes the state back into query values. Defaults are omitted.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Size > 0 && s.Size != DefaultSize {
		q.Set("size", strconv.Itoa(s.Size))
	}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	if s.SortBy != "" {
		q.Set("sort", s.SortBy)
		if s.Desc {
			q.Set("order", "desc")
		}
	}
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, s.Filters[k])
	}
	return q
}

// Href is the relative link "?<query>" for the state.
func (s State) Href() string {
	enc := s.Query().Encode()
	if enc == "" {
		return "?"
	}
	return "?" + enc
}

func (s State) clone() State {
	next := s
	next.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		next.Filters[k] = v
	}
	return next
}
