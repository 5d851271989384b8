package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func letters(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = string(rune('a' + i))
	}
	return items
}

func TestListDownScrollsPastPage(t *testing.T) {
	list := NewList(3)
	list.SetItems(letters(5))

	steps := []struct{ cursor, offset int }{{1, 0}, {2, 0}, {3, 1}, {4, 2}, {4, 2}}
	for _, want := range steps {
		list.Down()
		assert.Equal(t, want.cursor, list.Cursor)
		assert.Equal(t, want.offset, list.Offset)
	}
}

func TestListUpScrollsBack(t *testing.T) {
	list := NewList(3)
	list.SetItems(letters(5))
	list.Cursor, list.Offset = 4, 2

	steps := []struct{ cursor, offset int }{{3, 2}, {2, 2}, {1, 1}, {0, 0}, {0, 0}}
	for _, want := range steps {
		list.Up()
		assert.Equal(t, want.cursor, list.Cursor)
		assert.Equal(t, want.offset, list.Offset)
	}
}

func TestListVisiblePages(t *testing.T) {
	list := NewList(3)
	list.SetItems(letters(5))
	assert.Equal(t, []string{"a", "b", "c"}, list.Visible())

	list.Offset = 3
	assert.Equal(t, []string{"d", "e"}, list.Visible())
	assert.Equal(t, 4, list.RelToAbs(1))

	list.SetItems(nil)
	assert.Nil(t, list.Visible())
}

func TestListSelection(t *testing.T) {
	list := NewList(5)
	list.SetItems(letters(3))
	assert.Equal(t, 0, list.Selected())

	list.Down()
	assert.Equal(t, 1, list.Selected())
	assert.True(t, list.IsSelected(1))
	assert.False(t, list.IsSelected(0))
}

func TestListRefreshClampsCursor(t *testing.T) {
	list := NewList(3)
	list.SetItems(letters(10))
	for i := 0; i < 8; i++ {
		list.Down()
	}
	assert.Equal(t, 8, list.Cursor)

	list.Refresh(letters(4))
	assert.Equal(t, 3, list.Cursor)
	assert.Equal(t, []string{"b", "c", "d"}, list.Visible())

	list.Refresh(nil)
	assert.Equal(t, 0, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}

func TestListRefreshKeepsCursorInRange(t *testing.T) {
	list := NewList(5)
	list.SetItems(letters(6))
	list.Down()
	list.Down()

	list.Refresh(letters(6))
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}
