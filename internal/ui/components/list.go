package components

// List is a scrollable cursor over a slice of labels.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: pageSize}
}

// SetItems replaces items and resets the cursor.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
}

// Refresh replaces items keeping the cursor where it was, clamped to the new
// length. Used when a reload or a filter change shrinks the list.
func (l *List) Refresh(items []string) {
	l.Items = items
	if l.Cursor >= len(items) {
		l.Cursor = len(items) - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.PageSize > 0 && l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < len(l.Items)-1 {
		l.Cursor++
		if l.Cursor >= l.Offset+l.PageSize {
			l.Offset++
		}
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		if l.Cursor < l.Offset {
			l.Offset--
		}
	}
}

// Visible returns the items on the current page.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := min(l.Offset+l.PageSize, len(l.Items))
	return l.Items[l.Offset:end]
}

// Selected returns the cursor index.
func (l *List) Selected() int {
	return l.Cursor
}

// IsSelected reports whether the absolute index is under the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts an index into Visible() to an index into Items.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}
