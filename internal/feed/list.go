// Package feed holds the paginated list state shared by the comment and
// tweet screens.
package feed

// DefaultPageSize is the fixed page size the comment and tweet endpoints use.
const DefaultPageSize = 10

// List is an append-style paginated list: page 1 replaces, later pages
// append. HasMore is inferred from the last page being exactly full, which
// misreads an exact-multiple final page as having more; callers get one
// extra empty fetch in that case and the next SetPage corrects it.
type List[T any] struct {
	pageSize  int
	items     []T
	page      int
	lastCount int
}

// NewList creates a list with the given page size (DefaultPageSize if <= 0).
func NewList[T any](pageSize int) *List[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &List[T]{pageSize: pageSize}
}

// SetPage records a fetched page: page 1 replaces the list, any later page
// appends.
func (l *List[T]) SetPage(items []T, page int) {
	if page <= 1 {
		l.items = append([]T(nil), items...)
		l.page = 1
	} else {
		l.items = append(l.items, items...)
		l.page = page
	}
	l.lastCount = len(items)
}

// Items returns the assembled list.
func (l *List[T]) Items() []T { return l.items }

// Page returns the most recently loaded page number, 0 before any load.
func (l *List[T]) Page() int { return l.page }

// HasMore reports whether another page is likely to exist.
func (l *List[T]) HasMore() bool {
	return l.page > 0 && l.lastCount == l.pageSize
}

// Prepend inserts an item at the head (optimistic create).
func (l *List[T]) Prepend(item T) {
	l.items = append([]T{item}, l.items...)
}

// Update applies fn to every item matching the predicate (optimistic edit).
func (l *List[T]) Update(match func(T) bool, fn func(T) T) {
	for i, item := range l.items {
		if match(item) {
			l.items[i] = fn(item)
		}
	}
}

// Remove filters out items matching the predicate (optimistic delete).
func (l *List[T]) Remove(match func(T) bool) {
	kept := l.items[:0]
	for _, item := range l.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	l.items = kept
}

// Reset drops all state.
func (l *List[T]) Reset() {
	l.items = nil
	l.page = 0
	l.lastCount = 0
}
