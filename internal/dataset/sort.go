package dataset

import (
	"fmt"
	"sort"
)

// SortOrder selects the order in which rows are reviewed.
type SortOrder int

const (
	// OrderIndex keeps the filelist order.
	OrderIndex SortOrder = iota
	// OrderUnknownWords puts rows with the most unknown words first.
	OrderUnknownWords
)

func (o SortOrder) String() string {
	switch o {
	case OrderUnknownWords:
		return "unknown_words"
	default:
		return "index"
	}
}

// ParseSortOrder parses "index" (or "") and "unknown_words".
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "index":
		return OrderIndex, nil
	case "unknown_words":
		return OrderUnknownWords, nil
	}
	return OrderIndex, fmt.Errorf("unknown sort order %q (want index or unknown_words)", s)
}

// SortRows sorts rows in place. unknown reports the number of unknown words
// per original row index and is only consulted for OrderUnknownWords. Ties
// keep filelist order.
func SortRows(rows []Row, order SortOrder, unknown map[int]int) {
	switch order {
	case OrderUnknownWords:
		sort.SliceStable(rows, func(i, j int) bool {
			ui, uj := unknown[rows[i].Index], unknown[rows[j].Index]
			if ui != uj {
				return ui > uj
			}
			return rows[i].Index < rows[j].Index
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Index < rows[j].Index
		})
	}
}
