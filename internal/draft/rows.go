package draft

// NoRow is the tracked index of a collection with no current row.
const NoRow = -1

// Rows is an ordered child collection of dynamic length. Rows are only ever
// appended or removed; order is preserved otherwise.
//
// Appends and removals never write into a backing array a previous copy of
// the collection can still see.
type Rows[T any] struct {
	items   []T
	current int
	track   bool
}

// NewRows returns an empty collection. When track is set the collection keeps
// a current index that follows additions.
func NewRows[T any](track bool) Rows[T] {
	return Rows[T]{current: NoRow, track: track}
}

// Reset replaces the contents.
func (r *Rows[T]) Reset(items []T) {
	r.items = append([]T(nil), items...)
	r.current = NoRow
	if r.track && len(r.items) > 0 {
		r.current = 0
	}
}

// Len returns the number of rows.
func (r *Rows[T]) Len() int {
	return len(r.items)
}

// Add appends row and returns its index.
func (r *Rows[T]) Add(row T) int {
	r.items = append(r.items[:len(r.items):len(r.items)], row)
	idx := len(r.items) - 1
	if r.track {
		r.current = idx
	}
	return idx
}

// RemoveAt deletes the row at index. Out of range indexes are ignored.
func (r *Rows[T]) RemoveAt(index int) bool {
	if index < 0 || index >= len(r.items) {
		return false
	}
	next := make([]T, 0, len(r.items)-1)
	next = append(next, r.items[:index]...)
	next = append(next, r.items[index+1:]...)
	r.items = next
	if r.track && (index == r.current || r.current >= len(r.items)) {
		r.current = min(r.current, len(r.items)-1)
	}
	return true
}

// At returns a copy of the row at index.
func (r *Rows[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(r.items) {
		var zero T
		return zero, false
	}
	return r.items[index], true
}

// Update edits the row at index in place.
func (r *Rows[T]) Update(index int, fn func(row *T)) bool {
	if index < 0 || index >= len(r.items) {
		return false
	}
	next := append([]T(nil), r.items...)
	fn(&next[index])
	r.items = next
	return true
}

// Items returns a copy of the rows.
func (r *Rows[T]) Items() []T {
	return append([]T(nil), r.items...)
}

// Current returns the tracked index, NoRow when there is none.
func (r *Rows[T]) Current() int {
	return r.current
}

// Select moves the tracked index.
func (r *Rows[T]) Select(index int) bool {
	if !r.track || index < 0 || index >= len(r.items) {
		return false
	}
	r.current = index
	return true
}

// Relations is a child collection whose rows reference directory entries.
// Identity keys are unique within the collection.
type Relations[T any, K comparable] struct {
	items []T
	key   func(T) K
}

// NewRelations returns an empty relation set keyed by key.
func NewRelations[T any, K comparable](key func(T) K) Relations[T, K] {
	return Relations[T, K]{key: key}
}

// Reset replaces the contents, dropping later duplicates.
func (s *Relations[T, K]) Reset(items []T) {
	s.items = nil
	for _, item := range items {
		s.Add(item)
	}
}

// Add appends candidate unless a row with the same key is present.
func (s *Relations[T, K]) Add(candidate T) bool {
	if s.Has(s.key(candidate)) {
		return false
	}
	s.items = append(s.items[:len(s.items):len(s.items)], candidate)
	return true
}

// Remove deletes the row with key.
func (s *Relations[T, K]) Remove(key K) bool {
	for i, item := range s.items {
		if s.key(item) != key {
			continue
		}
		next := make([]T, 0, len(s.items)-1)
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
		s.items = next
		return true
	}
	return false
}

// Has reports whether a row with key is present.
func (s *Relations[T, K]) Has(key K) bool {
	for _, item := range s.items {
		if s.key(item) == key {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (s *Relations[T, K]) Len() int {
	return len(s.items)
}

// Items returns a copy of the rows.
func (s *Relations[T, K]) Items() []T {
	return append([]T(nil), s.items...)
}

// Keys returns the identity keys present in s.
func (s *Relations[T, K]) Keys() map[K]struct{} {
	out := make(map[K]struct{}, len(s.items))
	for _, item := range s.items {
		out[s.key(item)] = struct{}{}
	}
	return out
}

// Available returns the directory entries not yet present in s, in directory
// order. It is recomputed on every call.
func Available[T any, K comparable](s *Relations[T, K], directory []T) []T {
	out := make([]T, 0, len(directory))
	for _, entry := range directory {
		if !s.Has(s.key(entry)) {
			out = append(out, entry)
		}
	}
	return out
}

// sameKeys reports whether a and b hold the same identity keys.
func sameKeys[T any, K comparable](a, b []T, key func(T) K) bool {
	left := make(map[K]struct{}, len(a))
	for _, item := range a {
		left[key(item)] = struct{}{}
	}
	right := make(map[K]struct{}, len(b))
	for _, item := range b {
		right[key(item)] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for k := range left {
		if _, ok := right[k]; !ok {
			return false
		}
	}
	return true
}
