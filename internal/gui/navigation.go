package gui

import (
	"strconv"
)

// pageWindow shifts the row window [start, end) by its own width in the
// given direction. The window never moves before row 0 or entirely past the
// last row; ok is false when it cannot move.
func pageWindow(start, end, total, direction int) (newStart, newEnd int, ok bool) {
	width := end - start
	if width <= 0 {
		return start, end, false
	}

	switch {
	case direction < 0:
		if start <= 0 {
			return start, end, false
		}
		newStart = max(start-width, 0)
	case direction > 0:
		if end >= total {
			return start, end, false
		}
		newStart = start + width
	default:
		return start, end, false
	}
	return newStart, newStart + width, true
}

// updateNavigation updates the page button states
func (a *Application) updateNavigation() {
	start, errStart := strconv.Atoi(a.startEntry.Text)
	end, errEnd := strconv.Atoi(a.endEntry.Text)
	if errStart != nil || errEnd != nil {
		a.prevPageBtn.Disable()
		a.nextPageBtn.Disable()
		return
	}

	total := a.totalRows()
	if _, _, ok := pageWindow(start, end, total, -1); ok {
		a.prevPageBtn.Enable()
	} else {
		a.prevPageBtn.Disable()
	}
	if _, _, ok := pageWindow(start, end, total, 1); ok {
		a.nextPageBtn.Enable()
	} else {
		a.nextPageBtn.Disable()
	}
}

// onPrevPage shows the previous window of rows
func (a *Application) onPrevPage() {
	a.page(-1)
}

// onNextPage shows the next window of rows
func (a *Application) onNextPage() {
	a.page(1)
}

func (a *Application) page(direction int) {
	start, errStart := strconv.Atoi(a.startEntry.Text)
	end, errEnd := strconv.Atoi(a.endEntry.Text)
	if errStart != nil || errEnd != nil {
		return
	}
	newStart, newEnd, ok := pageWindow(start, end, a.totalRows(), direction)
	if !ok {
		return
	}
	a.startEntry.SetText(strconv.Itoa(newStart))
	a.endEntry.SetText(strconv.Itoa(newEnd))
	a.onReload()
}
