package listing

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

func itoa(n int) string { return strconv.Itoa(n) }

// FilterPage keeps the rows of the current page whose text (as returned by
// fields) contains term, case-insensitively. It never fetches other pages.
func FilterPage[T any](rows []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		for _, f := range fields(r) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// NilPlacement controls where rows without a sort key end up.
type NilPlacement int

const (
	// NilsLast puts missing keys at the end in both directions.
	NilsLast NilPlacement = iota
	// NilsFirst puts missing keys at the start in both directions.
	NilsFirst
	// NilsLow treats a missing key as smaller than any value, so it
	// moves to the front ascending and to the back descending.
	NilsLow
)

// Key extracts an optional sort key from a row.
type Key[K cmp.Ordered, T any] func(T) (K, bool)

// Sort orders rows in place by key. Equal keys keep their relative order.
func Sort[K cmp.Ordered, T any](rows []T, key Key[K, T], desc bool, nils NilPlacement) {
	slices.SortStableFunc(rows, func(a, b T) int {
		ka, oka := key(a)
		kb, okb := key(b)
		switch {
		case !oka && !okb:
			return 0
		case !oka || !okb:
			return nilOrder(!oka, desc, nils)
		}
		c := cmp.Compare(ka, kb)
		if desc {
			return -c
		}
		return c
	})
}

// nilOrder compares a row with a missing key against one with a key.
// aMissing tells which side is missing.
func nilOrder(aMissing, desc bool, nils NilPlacement) int {
	first := false
	switch nils {
	case NilsFirst:
		first = true
	case NilsLow:
		first = !desc
	}
	if first == aMissing {
		return -1
	}
	return 1
}
