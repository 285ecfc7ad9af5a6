// Package listing projects sorted posts into listing rows and implements the
// incremental "load more" reveal over them.
package listing

// Reveal exposes a growing prefix of an already ordered sequence. It never
// sorts or filters; that is the job of whoever produced items.
type Reveal[T any] struct {
	items    []T
	pageSize int
	revealed int
}

// NewReveal starts with min(pageSize, len(items)) items revealed. A pageSize
// below 1 is treated as 1.
func NewReveal[T any](items []T, pageSize int) *Reveal[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Reveal[T]{
		items:    items,
		pageSize: pageSize,
		revealed: min(pageSize, len(items)),
	}
}

// LoadMore reveals up to one more page. It is a no-op once everything is
// revealed.
func (r *Reveal[T]) LoadMore() {
	r.revealed = min(r.revealed+r.pageSize, len(r.items))
}

// HasMore reports whether LoadMore would reveal anything.
func (r *Reveal[T]) HasMore() bool {
	return r.revealed < len(r.items)
}

// Revealed returns the number of revealed items.
func (r *Reveal[T]) Revealed() int {
	return r.revealed
}

// Total returns the length of the underlying sequence.
func (r *Reveal[T]) Total() int {
	return len(r.items)
}

// PageSize returns the configured page size.
func (r *Reveal[T]) PageSize() int {
	return r.pageSize
}

// Items returns the whole sequence, revealed or not.
func (r *Reveal[T]) Items() []T {
	return r.items
}

// Visible returns the revealed prefix.
func (r *Reveal[T]) Visible() []T {
	return r.items[:r.revealed]
}
